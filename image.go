package apngdec

import (
	"image"
	"image/color"
)

// Image converts the current frame to a standard image whose bounds start
// at (0, 0). Indexed frames become *image.Paletted, luminance frames
// *image.Gray, 16-bit color frames *image.NRGBA64 and everything else
// *image.NRGBA.
func (d *Decoder) Image() (image.Image, error) {
	f, err := d.Frame()
	if err != nil {
		return nil, err
	}
	w, h := int(f.Control.Width), int(f.Control.Height)
	rect := image.Rect(0, 0, w, h)

	switch f.format {
	case FormatIndexed1, FormatIndexed2, FormatIndexed4, FormatIndexed8:
		// Every index the bit depth can encode needs an entry, so pad with
		// transparent black when PLTE is short or missing.
		pal := make(color.Palette, 1<<uint(f.depth))
		for i := range pal {
			pal[i] = color.NRGBA{}
		}
		for i, c := range f.palette {
			if i >= len(pal) {
				break
			}
			a := uint8(0xff)
			if i < len(f.alpha) {
				a = f.alpha[i]
			}
			pal[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
		}
		m := image.NewPaletted(rect, pal)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.Pix[y*m.Stride+x] = f.sample(y*w+x, 0)
			}
		}
		return m, nil

	case FormatLuminance1, FormatLuminance2, FormatLuminance4, FormatLuminance8:
		m := image.NewGray(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.Pix[y*m.Stride+x] = f.scale(f.sample(y*w+x, 0))
			}
		}
		return m, nil

	case FormatRGB16, FormatRGBA16:
		m := image.NewNRGBA64(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := (y*w + x) * f.comps * 2
				q := y*m.Stride + x*8
				copy(m.Pix[q:q+6], f.pix[p:p+6])
				if f.comps == 4 {
					copy(m.Pix[q+6:q+8], f.pix[p+6:p+8])
				} else {
					m.Pix[q+6], m.Pix[q+7] = 0xff, 0xff
				}
			}
		}
		return m, nil

	case FormatLuminanceAlpha1, FormatLuminanceAlpha2, FormatLuminanceAlpha4:
		return nil, fail(ErrUnsupportedFormat)
	}

	m := image.NewNRGBA(rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, f.Texel(x, y))
		}
	}
	return m, nil
}
