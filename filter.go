// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apngdec

// unfilterScanline reverses one filtered row. recon and scanline may share
// memory; prev is the previous reconstructed row, or nil for the first row.
// When pixels are smaller than a byte, bytewidth is 1.
func unfilterScanline(recon, scanline, prev []byte, bytewidth int, filterType byte) error {
	n := len(scanline)
	switch filterType {
	case ftNone:
		copy(recon, scanline)

	case ftSub:
		for i := 0; i < bytewidth && i < n; i++ {
			recon[i] = scanline[i]
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = scanline[i] + recon[i-bytewidth]
		}

	case ftUp:
		if prev == nil {
			copy(recon, scanline)
			break
		}
		for i := 0; i < n; i++ {
			recon[i] = scanline[i] + prev[i]
		}

	case ftAverage:
		if prev == nil {
			for i := 0; i < bytewidth && i < n; i++ {
				recon[i] = scanline[i]
			}
			for i := bytewidth; i < n; i++ {
				recon[i] = scanline[i] + recon[i-bytewidth]/2
			}
			break
		}
		for i := 0; i < bytewidth && i < n; i++ {
			recon[i] = scanline[i] + prev[i]/2
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = scanline[i] + uint8((int(recon[i-bytewidth])+int(prev[i]))/2)
		}

	case ftPaeth:
		if prev == nil {
			for i := 0; i < bytewidth && i < n; i++ {
				recon[i] = scanline[i]
			}
			for i := bytewidth; i < n; i++ {
				recon[i] = scanline[i] + paeth(recon[i-bytewidth], 0, 0)
			}
			break
		}
		for i := 0; i < bytewidth && i < n; i++ {
			recon[i] = scanline[i] + paeth(0, prev[i], 0)
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = scanline[i] + paeth(recon[i-bytewidth], prev[i], prev[i-bytewidth])
		}

	default:
		return malformed()
	}
	return nil
}

// unfilter reconstructs h rows of w pixels in place. buf holds each row as
// a filter-type byte followed by the filtered bytes; on return the first
// linebytes*h bytes are the unfiltered rows, back to back.
func unfilter(buf []byte, w, h, bpp int) error {
	bytewidth := (bpp + 7) / 8
	linebytes := (w*bpp + 7) / 8
	if len(buf) < (linebytes+1)*h {
		return malformed()
	}

	var prev []byte
	for y := 0; y < h; y++ {
		inIndex := (linebytes + 1) * y
		outIndex := linebytes * y
		filterType := buf[inIndex]
		recon := buf[outIndex : outIndex+linebytes]
		// Rows only ever move towards the front of buf, and the source row
		// starts after the destination, so a forward copy is safe.
		if err := unfilterScanline(recon, buf[inIndex+1:inIndex+1+linebytes], prev, bytewidth, filterType); err != nil {
			return err
		}
		prev = recon
	}
	return nil
}

// removePaddingBits packs h rows of olinebits bits, stored in rows of
// ilinebits bits, into a contiguous bit stream, most significant bit first.
// in and out may be the same buffer since the write position never passes
// the read position.
func removePaddingBits(out, in []byte, olinebits, ilinebits, h int) {
	diff := ilinebits - olinebits
	obp, ibp := 0, 0
	for y := 0; y < h; y++ {
		for x := 0; x < olinebits; x++ {
			bit := (in[ibp>>3] >> (7 - uint(ibp&7))) & 1
			ibp++
			mask := byte(1) << (7 - uint(obp&7))
			if bit == 0 {
				out[obp>>3] &^= mask
			} else {
				out[obp>>3] |= mask
			}
			obp++
		}
		ibp += diff
	}
	// Clear the unused low bits of the last byte.
	if obp&7 != 0 {
		out[obp>>3] &^= 0xff >> uint(obp&7)
	}
}

// postProcessScanlines unfilters the inflated rows in place and, for
// sub-byte pixels whose rows do not end on a byte boundary, removes the
// padding bits between rows. It returns the number of meaningful bytes.
func postProcessScanlines(buf []byte, w, h, bpp int) (int, error) {
	if bpp == 0 {
		return 0, malformed()
	}
	if err := unfilter(buf, w, h, bpp); err != nil {
		return 0, err
	}

	linebytes := (w*bpp + 7) / 8
	if bpp < 8 && w*bpp != linebytes*8 {
		removePaddingBits(buf, buf, w*bpp, linebytes*8, h)
		return (w*bpp*h + 7) / 8, nil
	}
	return linebytes * h, nil
}
