package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/shutej/apngdec"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

type framesOptions struct {
	outDir string
	scale  int
	blend  string
}

func init() {
	var opts framesOptions

	framesCommand := &cobra.Command{
		Use:   "frames <file>",
		Short: "Composite every frame and write it as a PNG",
		Long:  "Composite every frame onto the animation canvas and write the canvas after each frame as frame_NNN.png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			precision, err := apngdec.ParseBlendPrecision(opts.blend)
			if err != nil {
				return err
			}
			if opts.scale < 1 {
				return fmt.Errorf("scale must be at least 1, got %d", opts.scale)
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(opts.outDir, 0755); err != nil {
				return err
			}
			d := apngdec.NewOwned(src, apngdec.WithLogger(&logger))
			return writeFrames(d, opts.outDir, opts.scale, precision)
		},
	}
	framesCommand.Flags().StringVarP(&opts.outDir, "out", "o", ".", "directory to write frames to")
	framesCommand.Flags().IntVar(&opts.scale, "scale", 1, "integer upscaling factor")
	framesCommand.Flags().StringVar(&opts.blend, "blend", apngdec.BlendExact.String(), "blend precision (exact, per-term, truncated-alpha)")
	rootCommand.AddCommand(framesCommand)
}

func writeFrames(d *apngdec.Decoder, dir string, scale int, precision apngdec.BlendPrecision) error {
	defer d.Release()

	if err := d.Load(); err != nil {
		return err
	}
	canvas, err := apngdec.NewCanvas(int(d.Width()), int(d.Height()), apngdec.WithBlendPrecision(precision))
	if err != nil {
		return err
	}

	for n := 0; ; n++ {
		err := d.DecodeNextFrame()
		if errors.Is(err, apngdec.ErrDone) {
			return nil
		} else if err != nil {
			return err
		}
		f, err := d.Frame()
		if err != nil {
			return err
		}
		if err := canvas.CompositeFrame(f); err != nil {
			return err
		}

		path := filepath.Join(dir, fmt.Sprintf("frame_%03d.png", n))
		if err := writePNG(path, upscale(canvas.Image(), scale)); err != nil {
			return err
		}
		logger.Info().
			Str("path", path).
			Dur("delay", f.Control.Delay(apngdec.DefaultFrameDelay)).
			Msg("wrote frame")
	}
}

func upscale(m *image.NRGBA, scale int) image.Image {
	if scale == 1 {
		return m
	}
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

func writePNG(path string, m image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
