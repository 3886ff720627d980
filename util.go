// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apngdec

const pngHeader = "\x89PNG\r\n\x1a\n"

// Filter type, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// Chunk type codes, as big-endian uint32s of their four ASCII letters.
const (
	chunkIHDR = uint32('I')<<24 | uint32('H')<<16 | uint32('D')<<8 | uint32('R')
	chunkIDAT = uint32('I')<<24 | uint32('D')<<16 | uint32('A')<<8 | uint32('T')
	chunkPLTE = uint32('P')<<24 | uint32('L')<<16 | uint32('T')<<8 | uint32('E')
	chunkOFFS = uint32('o')<<24 | uint32('F')<<16 | uint32('F')<<8 | uint32('s')
	chunkIEND = uint32('I')<<24 | uint32('E')<<16 | uint32('N')<<8 | uint32('D')
	chunkTRNS = uint32('t')<<24 | uint32('R')<<16 | uint32('N')<<8 | uint32('S')
	chunkACTL = uint32('a')<<24 | uint32('c')<<16 | uint32('T')<<8 | uint32('L')
	chunkFCTL = uint32('f')<<24 | uint32('c')<<16 | uint32('T')<<8 | uint32('L')
	chunkFDAT = uint32('f')<<24 | uint32('d')<<16 | uint32('A')<<8 | uint32('T')
)

// Ancillary chunks have bit 5 of the first type byte set.
const ancillaryBit = 0x20000000

func isCritical(chunkType uint32) bool {
	return chunkType&ancillaryBit == 0
}

func chunkName(chunkType uint32) string {
	return string([]byte{
		byte(chunkType >> 24),
		byte(chunkType >> 16),
		byte(chunkType >> 8),
		byte(chunkType >> 0),
	})
}

// Big-endian.
func readUint16(b []uint8) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// Big-endian.
func readUint32(b []uint8) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

const (
	sizeOfUint16 = 2
	sizeOfUint32 = 4
)

// paeth implements the Paeth filter function, as per the PNG specification.
// Ties are broken in the order a, b, c.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
