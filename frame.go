package apngdec

import (
	"image"
	"image/color"
)

// Frame is a read-only view of the decoder's current pixel buffer. It is
// only valid until the next call to DecodeNextFrame.
type Frame struct {
	// Control describes the frame. When the image carries no fcTL, it
	// covers the whole image and uses DisposeNone and BlendSource.
	Control FrameControl

	format  Format
	depth   int
	comps   int
	width   int
	pix     []byte
	palette []RGB
	alpha   []uint8
}

// Frame returns a view of the current frame. It fails with ErrParam when no
// frame has been decoded.
func (d *Decoder) Frame() (*Frame, error) {
	if d.pixels == nil {
		return nil, fail(ErrParam)
	}
	fc, ok := d.FrameControl()
	if !ok {
		fc = FrameControl{Width: d.width, Height: d.height}
	}
	return &Frame{
		Control: fc,
		format:  d.format,
		depth:   int(d.bitDepth),
		comps:   d.Components(),
		width:   int(fc.Width),
		pix:     d.pixels,
		palette: d.palette,
		alpha:   d.alphaPalette,
	}, nil
}

// Bounds is the frame rectangle in image coordinates.
func (f *Frame) Bounds() image.Rectangle {
	x, y := int(f.Control.XOffset), int(f.Control.YOffset)
	return image.Rect(x, y, x+int(f.Control.Width), y+int(f.Control.Height))
}

func (f *Frame) Format() Format { return f.format }

// sample returns component c of pixel p. Sixteen-bit samples keep only
// their high byte.
func (f *Frame) sample(p, c int) uint8 {
	switch {
	case f.depth == 8:
		return f.pix[p*f.comps+c]
	case f.depth == 16:
		return f.pix[2*(p*f.comps+c)]
	default:
		// Sub-byte samples are packed most significant bit first.
		off := (p*f.comps + c) * f.depth
		shift := uint(8 - f.depth - off&7)
		return (f.pix[off>>3] >> shift) & uint8(1<<uint(f.depth)-1)
	}
}

// scale widens a sub-byte sample to 8 bits.
func (f *Frame) scale(v uint8) uint8 {
	if f.depth >= 8 {
		return v
	}
	top := 1<<uint(f.depth) - 1
	return uint8(int(v) * 255 / top)
}

// Texel returns the color of the pixel at frame coordinates (x, y). Indexed
// pixels go through the palette and alpha palette; an index past the
// palette is transparent black.
func (f *Frame) Texel(x, y int) color.NRGBA {
	p := y*f.width + x
	switch f.format {
	case FormatIndexed1, FormatIndexed2, FormatIndexed4, FormatIndexed8:
		idx := int(f.sample(p, 0))
		if idx >= len(f.palette) {
			return color.NRGBA{}
		}
		c := f.palette[idx]
		a := uint8(0xff)
		if idx < len(f.alpha) {
			a = f.alpha[idx]
		}
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}

	case FormatLuminance1, FormatLuminance2, FormatLuminance4, FormatLuminance8:
		l := f.scale(f.sample(p, 0))
		return color.NRGBA{R: l, G: l, B: l, A: 0xff}

	case FormatLuminanceAlpha1, FormatLuminanceAlpha2, FormatLuminanceAlpha4, FormatLuminanceAlpha8:
		l := f.scale(f.sample(p, 0))
		return color.NRGBA{R: l, G: l, B: l, A: f.scale(f.sample(p, 1))}

	case FormatRGB8, FormatRGB16:
		return color.NRGBA{R: f.sample(p, 0), G: f.sample(p, 1), B: f.sample(p, 2), A: 0xff}

	case FormatRGBA8, FormatRGBA16:
		return color.NRGBA{R: f.sample(p, 0), G: f.sample(p, 1), B: f.sample(p, 2), A: f.sample(p, 3)}
	}
	return color.NRGBA{}
}
