// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apngdec

import (
	"math"
	"time"
)

// RGB is one palette entry, as stored in the PLTE chunk.
type RGB struct {
	R, G, B uint8
}

// DisposeOp is the dispose operator, as per the APNG spec.
type DisposeOp uint8

const (
	DisposeNone       = DisposeOp(0)
	DisposeBackground = DisposeOp(1)
	DisposePrevious   = DisposeOp(2)
)

func (op DisposeOp) String() string {
	switch op {
	case DisposeNone:
		return "NONE"
	case DisposeBackground:
		return "BACKGROUND"
	case DisposePrevious:
		return "PREVIOUS"
	}
	return "INVALID"
}

// BlendOp is the blend operator, as per the APNG spec.
type BlendOp uint8

const (
	BlendSource = BlendOp(0)
	BlendOver   = BlendOp(1)
)

func (op BlendOp) String() string {
	switch op {
	case BlendSource:
		return "SOURCE"
	case BlendOver:
		return "OVER"
	}
	return "INVALID"
}

// DefaultFrameDelay is used when a frame's delay denominator is 0.
const DefaultFrameDelay = 100 * time.Millisecond

// FrameControl is the frame control chunk, as per the APNG spec.
type FrameControl struct {
	SequenceNumber uint32    // Sequence number of the animation chunk, starting from 0
	Width          uint32    // Width of the following frame
	Height         uint32    // Height of the following frame
	XOffset        uint32    // X position at which to render the following frame
	YOffset        uint32    // Y position at which to render the following frame
	DelayNum       uint16    // Frame delay fraction numerator
	DelayDen       uint16    // Frame delay fraction denominator
	DisposeOp      DisposeOp // Type of frame area disposal to be done after rendering this frame
	BlendOp        BlendOp   // Type of frame area rendering for this frame
}

const sizeOfFrameControl = sizeOfUint32*5 + sizeOfUint16*2 + 1 + 1

// Delay returns how long the frame is displayed. A zero denominator yields
// def.
func (fc FrameControl) Delay(def time.Duration) time.Duration {
	if fc.DelayDen == 0 {
		return def
	}
	return time.Duration(fc.DelayNum) * time.Second / time.Duration(fc.DelayDen)
}

func parseFrameControl(data []byte) (FrameControl, error) {
	if len(data) < sizeOfFrameControl {
		return FrameControl{}, malformed()
	}
	fc := FrameControl{
		SequenceNumber: readUint32(data[0:4]),
		Width:          readUint32(data[4:8]),
		Height:         readUint32(data[8:12]),
		XOffset:        readUint32(data[12:16]),
		YOffset:        readUint32(data[16:20]),
		DelayNum:       readUint16(data[20:22]),
		DelayDen:       readUint16(data[22:24]),
		DisposeOp:      DisposeOp(data[24]),
		BlendOp:        BlendOp(data[25]),
	}
	if fc.DisposeOp > DisposePrevious || fc.BlendOp > BlendOver {
		return FrameControl{}, malformed()
	}
	return fc, nil
}

// AnimationControl is the animation control chunk, as per the APNG spec.
type AnimationControl struct {
	NumFrames uint32 // Number of frames
	NumPlays  uint32 // Number of times to loop this APNG. 0 indicates infinite looping.
}

func parseAnimationControl(data []byte) (AnimationControl, error) {
	if len(data) < sizeOfUint32*2 {
		return AnimationControl{}, malformed()
	}
	return AnimationControl{
		NumFrames: readUint32(data[0:4]),
		NumPlays:  readUint32(data[4:8]),
	}, nil
}

func parsePalette(data []byte) ([]RGB, error) {
	if len(data)%3 != 0 || len(data) > 256*3 {
		return nil, malformed()
	}
	palette := make([]RGB, len(data)/3)
	for i := range palette {
		palette[i] = RGB{R: data[3*i+0], G: data[3*i+1], B: data[3*i+2]}
	}
	return palette, nil
}

func parseTransparency(data []byte) ([]uint8, error) {
	if len(data) > 256 {
		return nil, malformed()
	}
	alpha := make([]uint8, len(data))
	copy(alpha, data)
	return alpha, nil
}

// parseOffset reads the two signed big-endian positions of an oFFs chunk.
// The trailing unit byte, when present, is ignored.
func parseOffset(data []byte) (x, y int32, err error) {
	if len(data) < sizeOfUint32*2 {
		return 0, 0, malformed()
	}
	return int32(readUint32(data[0:4])), int32(readUint32(data[4:8])), nil
}

// chunk is one length-prefixed record of the PNG container. The CRC is not
// verified.
type chunk struct {
	typ  uint32
	data []byte
	next int // offset of the chunk that follows
}

// chunkAt reads the chunk header at cursor and checks that the whole chunk,
// CRC included, lies inside src before handing out its payload.
func chunkAt(src []byte, cursor int) (chunk, error) {
	if cursor < 0 || cursor+12 > len(src) {
		return chunk{}, malformed()
	}
	length := readUint32(src[cursor : cursor+4])
	if length > math.MaxInt32 {
		return chunk{}, malformed()
	}
	end := uint64(cursor) + 12 + uint64(length)
	if end > uint64(len(src)) {
		return chunk{}, malformed()
	}
	start := cursor + 8
	return chunk{
		typ:  readUint32(src[cursor+4 : cursor+8]),
		data: src[start : start+int(length)],
		next: int(end),
	}, nil
}
