package apngdec

import (
	"image"
	"image/color"
	"math"
)

// FrameSource supplies the texels of one decoded frame in frame
// coordinates. *Frame implements it.
type FrameSource interface {
	Texel(x, y int) color.NRGBA
}

// Canvas accumulates animation frames into a full-size image, applying each
// frame's dispose and blend operators. Pixels are stored with straight
// (non-premultiplied) alpha. A Canvas is not safe for concurrent use.
type Canvas struct {
	img       *image.NRGBA
	precision BlendPrecision
	maxBytes  uint64

	prevDispose DisposeOp
	prevRect    image.Rectangle
	saved       []uint8
	savedRect   image.Rectangle
}

type CanvasOption func(*Canvas)

// WithBlendPrecision selects the arithmetic used for BlendOver frames.
func WithBlendPrecision(p BlendPrecision) CanvasOption {
	return func(c *Canvas) {
		c.precision = p
	}
}

// WithMaxCanvasBytes sets the largest pixel buffer NewCanvas will allocate.
// It defaults to DefaultMaxFrameBytes.
func WithMaxCanvasBytes(n uint64) CanvasOption {
	return func(c *Canvas) {
		c.maxBytes = n
	}
}

// NewCanvas returns a fully transparent width×height canvas. It fails with
// ErrParam for negative or oversized dimensions and with ErrNoMem when the
// pixels would exceed the canvas byte limit.
func NewCanvas(width, height int, opts ...CanvasOption) (*Canvas, error) {
	c := &Canvas{
		precision: BlendExact,
		maxBytes:  DefaultMaxFrameBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	if width < 0 || height < 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return nil, fail(ErrParam)
	}
	// Both sides fit in 31 bits, so the product cannot overflow.
	if uint64(width)*uint64(height) > c.maxBytes/4 {
		return nil, fail(ErrNoMem)
	}
	c.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	return c, nil
}

// Image returns the canvas contents. The image is updated in place by later
// calls to Composite.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Composite disposes of the previous frame, then draws src inside the
// rectangle described by fc.
func (c *Canvas) Composite(fc FrameControl, src FrameSource) error {
	x, y := int64(fc.XOffset), int64(fc.YOffset)
	r := image.Rect(int(x), int(y), int(x+int64(fc.Width)), int(y+int64(fc.Height)))
	if x+int64(fc.Width) > int64(c.img.Rect.Max.X) || y+int64(fc.Height) > int64(c.img.Rect.Max.Y) {
		return fail(ErrParam)
	}

	switch c.prevDispose {
	case DisposePrevious:
		c.restore()
	case DisposeBackground:
		c.clear(c.prevRect)
	}

	if fc.DisposeOp == DisposePrevious {
		c.snapshot(r)
	}

	for py := 0; py < r.Dy(); py++ {
		for px := 0; px < r.Dx(); px++ {
			s := src.Texel(px, py)
			if fc.BlendOp == BlendOver {
				s = c.over(s, c.img.NRGBAAt(r.Min.X+px, r.Min.Y+py))
			}
			c.img.SetNRGBA(r.Min.X+px, r.Min.Y+py, s)
		}
	}

	c.prevDispose = fc.DisposeOp
	c.prevRect = r
	return nil
}

// CompositeFrame composites f using its own frame control.
func (c *Canvas) CompositeFrame(f *Frame) error {
	return c.Composite(f.Control, f)
}

func (c *Canvas) over(s, d color.NRGBA) color.NRGBA {
	p := c.precision
	if p == BlendExact {
		return overExact(s, d)
	}
	return color.NRGBA{
		R: p.blend(s.R, d.R, s.A),
		G: p.blend(s.G, d.G, s.A),
		B: p.blend(s.B, d.B, s.A),
		A: p.blend(0xff, d.A, s.A),
	}
}

func (c *Canvas) clear(r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.img.Pix[c.img.PixOffset(r.Min.X, y):c.img.PixOffset(r.Max.X, y)]
		for i := range row {
			row[i] = 0
		}
	}
}

func (c *Canvas) snapshot(r image.Rectangle) {
	c.saved = c.saved[:0]
	for y := r.Min.Y; y < r.Max.Y; y++ {
		c.saved = append(c.saved, c.img.Pix[c.img.PixOffset(r.Min.X, y):c.img.PixOffset(r.Max.X, y)]...)
	}
	c.savedRect = r
}

// restore writes the last snapshot back. Before any snapshot exists it
// leaves the canvas untouched.
func (c *Canvas) restore() {
	r := c.savedRect
	n := r.Dx() * 4
	for i, y := 0, r.Min.Y; y < r.Max.Y; i, y = i+1, y+1 {
		copy(c.img.Pix[c.img.PixOffset(r.Min.X, y):], c.saved[i*n:(i+1)*n])
	}
}
