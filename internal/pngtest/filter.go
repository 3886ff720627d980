// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pngtest

// FilterType is a PNG scanline filter.
type FilterType uint8

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
	nFilter

	// FilterAdaptive picks the filter with the smallest sum of absolute
	// differences for each row.
	FilterAdaptive FilterType = 0xff
)

// Scanlines splits raw into rows of rowBytes bytes and filters each one,
// prefixing its filter type byte. Row y uses fts[y%len(fts)]; with no
// filter types every row uses FilterNone. bytewidth is the filter's pixel
// stride, at least 1.
func Scanlines(raw []byte, rowBytes, bytewidth int, fts ...FilterType) []byte {
	if len(fts) == 0 {
		fts = []FilterType{FilterNone}
	}
	if bytewidth < 1 {
		bytewidth = 1
	}
	h := 0
	if rowBytes > 0 {
		h = len(raw) / rowBytes
	}

	// cr[*] and pr are the bytes for the current and previous row. The
	// +1 is for the per-row filter type, which is at cr[*][0].
	var cr [nFilter][]uint8
	for i := range cr {
		cr[i] = make([]uint8, 1+rowBytes)
		cr[i][0] = uint8(i)
	}
	pr := make([]uint8, 1+rowBytes)

	out := make([]byte, 0, h*(1+rowBytes))
	for y := 0; y < h; y++ {
		copy(cr[0][1:], raw[y*rowBytes:(y+1)*rowBytes])
		ft := fts[y%len(fts)]
		if ft == FilterAdaptive {
			ft = FilterType(filter(&cr, pr, bytewidth))
		} else {
			apply(&cr, pr, bytewidth, ft)
		}
		out = append(out, cr[ft]...)

		// The current row for y is the previous row for y+1.
		pr, cr[0] = cr[0], pr
		cr[0][0] = 0
	}
	return out
}

// apply writes cr[0] filtered by ft into cr[ft].
func apply(cr *[nFilter][]byte, pr []byte, bpp int, ft FilterType) {
	cdat0, pdat := cr[0][1:], pr[1:]
	cdat := cr[ft][1:]
	for i := range cdat0 {
		var a, c uint8
		if i >= bpp {
			a, c = cdat0[i-bpp], pdat[i-bpp]
		}
		b := pdat[i]
		switch ft {
		case FilterSub:
			cdat[i] = cdat0[i] - a
		case FilterUp:
			cdat[i] = cdat0[i] - b
		case FilterAverage:
			cdat[i] = cdat0[i] - uint8((int(a)+int(b))/2)
		case FilterPaeth:
			cdat[i] = cdat0[i] - paeth(a, b, c)
		}
	}
}

// The absolute value of a byte interpreted as a signed int8.
func abs8(d uint8) int {
	if d < 128 {
		return int(d)
	}
	return 256 - int(d)
}

// Chooses the filter to use for encoding the current row, and applies it.
// The return value is the index of the filter and also of the row in cr
// that has had it applied.
func filter(cr *[nFilter][]byte, pr []byte, bpp int) int {
	cdat0 := cr[0][1:]
	n := len(cdat0)
	best, ft := 0, int(FilterNone)
	for i := 0; i < n; i++ {
		best += abs8(cdat0[i])
	}
	for _, f := range []FilterType{FilterUp, FilterPaeth, FilterSub, FilterAverage} {
		apply(cr, pr, bpp, f)
		sum := 0
		for _, v := range cr[f][1:] {
			sum += abs8(v)
		}
		if sum < best {
			best, ft = sum, int(f)
		}
	}
	return ft
}

// paeth implements the Paeth filter function, as per the PNG specification.
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
