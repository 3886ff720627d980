package apngdec_test

import (
	"errors"
	"fmt"

	"github.com/shutej/apngdec"
	"github.com/shutej/apngdec/internal/pngtest"
)

const frames = 3

func Example() {
	const w, h = 4, 4

	b := pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: w, Height: h, BitDepth: 8, ColorType: 6}).
		ACTL(frames, 1)

	raw := make([]byte, w*h*4)
	for i := 0; i < frames; i++ {
		// Light up pixel (i, i) in red.
		raw[(i*w+i)*4+0] = 255
		raw[(i*w+i)*4+3] = 255
		b.FCTL(pngtest.FrameControl{
			Width:    w,
			Height:   h,
			DelayNum: 100, // 10 fps
			DelayDen: 1000,
		})
		z := pngtest.Zlib(pngtest.Scanlines(raw, w*4, 4, pngtest.FilterAdaptive), pngtest.DefaultCompression)
		if i == 0 {
			b.IDAT(z)
		} else {
			b.FDAT(z)
		}
	}
	b.IEND()

	d := apngdec.New(b.Bytes())
	if err := d.Load(); err != nil {
		panic(err)
	}
	canvas, err := apngdec.NewCanvas(int(d.Width()), int(d.Height()))
	if err != nil {
		panic(err)
	}
	fmt.Printf("%dx%d %s, %d frames\n", d.Width(), d.Height(), d.Format(), d.NumFrames())

	for n := 0; ; n++ {
		err := d.DecodeNextFrame()
		if errors.Is(err, apngdec.ErrDone) {
			break
		} else if err != nil {
			panic(err)
		}
		f, err := d.Frame()
		if err != nil {
			panic(err)
		}
		if err := canvas.CompositeFrame(f); err != nil {
			panic(err)
		}
		fmt.Printf("frame %d: %v, pixel (%d,%d) = %v\n", n, f.Control.Delay(apngdec.DefaultFrameDelay), n, n, canvas.Image().NRGBAAt(n, n))
	}

	// Output:
	// 4x4 rgba8, 3 frames
	// frame 0: 100ms, pixel (0,0) = {255 0 0 255}
	// frame 1: 100ms, pixel (1,1) = {255 0 0 255}
	// frame 2: 100ms, pixel (2,2) = {255 0 0 255}
}
