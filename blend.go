package apngdec

import (
	"fmt"
	"image/color"
)

// BlendPrecision selects the integer arithmetic used by BlendOver.
type BlendPrecision uint8

const (
	// BlendExact is straight-alpha source-over, dividing once after the
	// products are summed. Over an opaque destination it reduces to
	// (src*a + dst*(255-a)) / 255.
	BlendExact BlendPrecision = iota
	// BlendPerTerm truncates each weighted term before summing.
	BlendPerTerm
	// BlendTruncatedAlpha divides alpha by 255 before multiplying, so any
	// alpha strictly between 0 and 255 zeroes the channel.
	BlendTruncatedAlpha
)

var blendPrecisionNames = map[BlendPrecision]string{
	BlendExact:          "exact",
	BlendPerTerm:        "per-term",
	BlendTruncatedAlpha: "truncated-alpha",
}

func (p BlendPrecision) String() string {
	if s, ok := blendPrecisionNames[p]; ok {
		return s
	}
	return fmt.Sprintf("BlendPrecision(%d)", uint8(p))
}

// ParseBlendPrecision maps a name returned by String back to its value.
func ParseBlendPrecision(s string) (BlendPrecision, error) {
	for p, name := range blendPrecisionNames {
		if name == s {
			return p, nil
		}
	}
	return BlendExact, fmt.Errorf("unknown blend precision %q", s)
}

// overExact composites s over d, weighting the destination color by its
// own alpha so that a transparent destination keeps the source color.
func overExact(s, d color.NRGBA) color.NRGBA {
	a, da := uint32(s.A), uint32(d.A)
	// Output alpha scaled by 255.
	out := a*255 + da*(255-a)
	if out == 0 {
		return color.NRGBA{}
	}
	mix := func(sc, dc uint8) uint8 {
		return uint8((uint32(sc)*a*255 + uint32(dc)*da*(255-a)) / out)
	}
	return color.NRGBA{
		R: mix(s.R, d.R),
		G: mix(s.G, d.G),
		B: mix(s.B, d.B),
		A: uint8(out / 255),
	}
}

// blend mixes src over dst with weight a.
func (p BlendPrecision) blend(src, dst, a uint8) uint8 {
	s, d, w := uint32(src), uint32(dst), uint32(a)
	var v uint32
	switch p {
	case BlendPerTerm:
		v = s*w/255 + d*(255-w)/255
	case BlendTruncatedAlpha:
		v = s*(w/255) + d*((255-w)/255)
	default:
		v = (s*w + d*(255-w)) / 255
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
