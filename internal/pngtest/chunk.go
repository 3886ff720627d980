// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pngtest assembles PNG and APNG byte streams for decoder tests.
// Unlike a real encoder it writes whatever it is told to, so tests can
// produce malformed, truncated and out-of-order files as easily as valid
// ones.
package pngtest

import (
	"bytes"
	"hash/crc32"
	"io"
)

const Signature = "\x89PNG\r\n\x1a\n"

// Header is the IHDR chunk.
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// FrameControl is the fcTL chunk. SequenceNumber is filled in by the
// Builder.
type FrameControl struct {
	SequenceNumber uint32
	Width          uint32
	Height         uint32
	XOffset        uint32
	YOffset        uint32
	DelayNum       uint16
	DelayDen       uint16
	DisposeOp      uint8
	BlendOp        uint8
}

// Builder accumulates chunks after the PNG signature. APNG sequence
// numbers are shared between fcTL and fdAT chunks and start at 0.
type Builder struct {
	buf bytes.Buffer
	seq uint32
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.buf.WriteString(Signature)
	return b
}

// Bytes returns the stream written so far.
func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *Builder) nextSequence() uint32 {
	tmp := b.seq
	b.seq++
	return tmp
}

// Chunk appends a chunk with an arbitrary type and payload.
func (b *Builder) Chunk(name string, data []byte) *Builder {
	writeChunkTo(name, data, &b.buf)
	return b
}

// Raw appends bytes with no chunk framing.
func (b *Builder) Raw(data []byte) *Builder {
	b.buf.Write(data)
	return b
}

func (b *Builder) IHDR(h Header) *Builder {
	buf := [sizeOfUint32*2 + 5]byte{}
	writeUint32(buf[0:4], h.Width)
	writeUint32(buf[4:8], h.Height)
	buf[8] = h.BitDepth
	buf[9] = h.ColorType
	buf[10] = h.CompressionMethod
	buf[11] = h.FilterMethod
	buf[12] = h.InterlaceMethod
	return b.Chunk("IHDR", buf[:])
}

// PLTE writes a palette from packed RGB triples.
func (b *Builder) PLTE(rgb []byte) *Builder {
	return b.Chunk("PLTE", rgb)
}

func (b *Builder) TRNS(alpha []byte) *Builder {
	return b.Chunk("tRNS", alpha)
}

// OFFS writes the image offset chunk as two signed big-endian values.
func (b *Builder) OFFS(x, y int32) *Builder {
	buf := [sizeOfUint32 * 2]byte{}
	writeUint32(buf[0:4], uint32(x))
	writeUint32(buf[4:8], uint32(y))
	return b.Chunk("oFFs", buf[:])
}

func (b *Builder) ACTL(numFrames, numPlays uint32) *Builder {
	buf := [sizeOfUint32 * 2]byte{}
	writeUint32(buf[0:4], numFrames)
	writeUint32(buf[4:8], numPlays)
	return b.Chunk("acTL", buf[:])
}

func (b *Builder) FCTL(fc FrameControl) *Builder {
	fc.SequenceNumber = b.nextSequence()
	buf := [sizeOfUint32*5 + sizeOfUint16*2 + 2]byte{}
	writeUint32(buf[0:4], fc.SequenceNumber)
	writeUint32(buf[4:8], fc.Width)
	writeUint32(buf[8:12], fc.Height)
	writeUint32(buf[12:16], fc.XOffset)
	writeUint32(buf[16:20], fc.YOffset)
	writeUint16(buf[20:22], fc.DelayNum)
	writeUint16(buf[22:24], fc.DelayDen)
	buf[24] = fc.DisposeOp
	buf[25] = fc.BlendOp
	return b.Chunk("fcTL", buf[:])
}

// IDAT writes one image data chunk holding part or all of a zlib stream.
func (b *Builder) IDAT(z []byte) *Builder {
	return b.Chunk("IDAT", z)
}

// FDAT writes one frame data chunk, prefixing the next sequence number.
func (b *Builder) FDAT(z []byte) *Builder {
	buf := make([]byte, sizeOfUint32+len(z))
	writeUint32(buf[0:4], b.nextSequence())
	copy(buf[4:], z)
	return b.Chunk("fdAT", buf)
}

func (b *Builder) IEND() *Builder {
	return b.Chunk("IEND", nil)
}

// Big-endian.
func writeUint16(b []uint8, u uint16) {
	b[0] = uint8(u >> 8)
	b[1] = uint8(u >> 0)
}

const sizeOfUint16 = 2

// Big-endian.
func writeUint32(b []uint8, u uint32) {
	b[0] = uint8(u >> 24)
	b[1] = uint8(u >> 16)
	b[2] = uint8(u >> 8)
	b[3] = uint8(u >> 0)
}

const sizeOfUint32 = 4

func writeChunkTo(name string, b []byte, w io.Writer) (int64, error) {
	header := [8]byte{}
	footer := [4]byte{}

	writeUint32(header[:4], uint32(len(b)))
	copy(header[4:8], name)

	crc := crc32.NewIEEE()
	crc.Write(header[4:8])
	crc.Write(b)
	writeUint32(footer[:4], crc.Sum32())

	hl, err := w.Write(header[:8])
	if err != nil {
		return int64(hl), err
	}
	bl, err := w.Write(b)
	if err != nil {
		return int64(hl + bl), err
	}
	fl, err := w.Write(footer[:4])
	return int64(hl + bl + fl), err
}
