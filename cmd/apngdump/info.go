package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shutej/apngdec"
	"github.com/spf13/cobra"
)

func init() {
	infoCommand := &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header, palette and frame controls of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), apngdec.NewOwned(src, apngdec.WithLogger(&logger)))
		},
	}
	rootCommand.AddCommand(infoCommand)
}

func printInfo(w io.Writer, d *apngdec.Decoder) error {
	defer d.Release()

	if err := d.Load(); err != nil {
		return err
	}
	fmt.Fprintf(w, "size:    %dx%d\n", d.Width(), d.Height())
	fmt.Fprintf(w, "format:  %s (%d bits per pixel)\n", d.Format(), d.BitsPerPixel())
	if x, y := d.XOffset(), d.YOffset(); x != 0 || y != 0 {
		fmt.Fprintf(w, "offset:  %d,%d\n", x, y)
	}
	if len(d.Palette()) > 0 {
		fmt.Fprintf(w, "palette: %d entries, %d alpha\n", len(d.Palette()), len(d.AlphaPalette()))
	}
	if d.IsAnimated() {
		fmt.Fprintf(w, "frames:  %d, plays %d\n", d.NumFrames(), d.NumPlays())
	}

	for n := 0; ; n++ {
		err := d.DecodeNextFrame()
		if errors.Is(err, apngdec.ErrDone) {
			return nil
		} else if err != nil {
			return err
		}
		fc, ok := d.FrameControl()
		if !ok {
			fmt.Fprintf(w, "frame %d: %d bytes\n", n, d.Size())
			continue
		}
		fmt.Fprintf(w, "frame %d: seq %d, %dx%d at %d,%d, delay %v, dispose %s, blend %s, %d bytes\n",
			n, fc.SequenceNumber, fc.Width, fc.Height, fc.XOffset, fc.YOffset,
			fc.Delay(apngdec.DefaultFrameDelay), fc.DisposeOp, fc.BlendOp, d.Size())
	}
}
