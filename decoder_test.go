package apngdec_test

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/shutej/apngdec"
	"github.com/shutej/apngdec/internal/pngtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compressRows filters raw with adaptive filtering and zlib-compresses it.
func compressRows(raw []byte, rowBytes, bytewidth int) []byte {
	return pngtest.Zlib(pngtest.Scanlines(raw, rowBytes, bytewidth, pngtest.FilterAdaptive), pngtest.DefaultCompression)
}

func gray8(w, h int) []byte {
	raw := make([]byte, w*h)
	for i := range raw {
		raw[i] = byte(i * 7)
	}
	return raw
}

func stillGray8(w, h int) []byte {
	return pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: uint32(w), Height: uint32(h), BitDepth: 8, ColorType: 0}).
		IDAT(compressRows(gray8(w, h), w, 1)).
		IEND().
		Bytes()
}

// rgba returns w×h pixels of a single color.
func rgba(w, h int, r, g, b, a byte) []byte {
	raw := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		raw = append(raw, r, g, b, a)
	}
	return raw
}

// animated builds a 4×4 RGBA animation whose default image is the first
// frame, followed by a 2×2 frame at (1, 2).
func animated() []byte {
	return pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: 4, Height: 4, BitDepth: 8, ColorType: 6}).
		ACTL(2, 3).
		FCTL(pngtest.FrameControl{Width: 4, Height: 4, DelayNum: 1, DelayDen: 10}).
		IDAT(compressRows(rgba(4, 4, 255, 0, 0, 255), 16, 4)).
		Chunk("tEXt", []byte("Comment\x00between frames")).
		FCTL(pngtest.FrameControl{Width: 2, Height: 2, XOffset: 1, YOffset: 2, DisposeOp: 2, BlendOp: 1}).
		FDAT(compressRows(rgba(2, 2, 0, 0, 255, 128), 8, 4)).
		IEND().
		Bytes()
}

func TestParseHeaderErrors(t *testing.T) {
	header := func(h pngtest.Header) []byte {
		return pngtest.NewBuilder().IHDR(h).Bytes()
	}
	valid := pngtest.Header{Width: 1, Height: 1, BitDepth: 8, ColorType: 0}
	with := func(f func(h *pngtest.Header)) []byte {
		h := valid
		f(&h)
		return header(h)
	}
	notSignature := header(valid)
	notSignature[1] = 'Q'

	tests := []struct {
		name string
		src  []byte
		want apngdec.ErrorCode
	}{
		{"empty", nil, apngdec.ErrNotPNG},
		{"too short", header(valid)[:28], apngdec.ErrNotPNG},
		{"bad signature", notSignature, apngdec.ErrNotPNG},
		{"first chunk not IHDR", pngtest.NewBuilder().Chunk("IDAT", make([]byte, 13)).Bytes(), apngdec.ErrMalformed},
		{"rgb 4 bit", with(func(h *pngtest.Header) { h.ColorType, h.BitDepth = 2, 4 }), apngdec.ErrUnsupportedFormat},
		{"luminance alpha 16 bit", with(func(h *pngtest.Header) { h.ColorType, h.BitDepth = 4, 16 }), apngdec.ErrUnsupportedFormat},
		{"color type 5", with(func(h *pngtest.Header) { h.ColorType = 5 }), apngdec.ErrUnsupportedFormat},
		{"zero width", with(func(h *pngtest.Header) { h.Width = 0 }), apngdec.ErrMalformed},
		{"compression method", with(func(h *pngtest.Header) { h.CompressionMethod = 1 }), apngdec.ErrMalformed},
		{"filter method", with(func(h *pngtest.Header) { h.FilterMethod = 1 }), apngdec.ErrMalformed},
		{"interlaced", with(func(h *pngtest.Header) { h.InterlaceMethod = 1 }), apngdec.ErrInterlaced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := apngdec.New(tt.src)
			err := d.ParseHeader()
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want, d.ErrorCode())
			assert.Equal(t, apngdec.StateError, d.State())
			assert.Regexp(t, `^decoder\.go:\d+$`, d.ErrorSite().String())

			// Every later call reports the same error.
			assert.Equal(t, err, d.ParseHeader())
			assert.Equal(t, err, d.Load())
			assert.Equal(t, err, d.DecodeNextFrame())
			assert.Nil(t, d.Pixels())
		})
	}
}

func TestParseHeader(t *testing.T) {
	d := apngdec.New(pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: 640, Height: 480, BitDepth: 16, ColorType: 6}).
		Bytes())
	require.NoError(t, d.ParseHeader())
	assert.Equal(t, apngdec.StateHeader, d.State())
	assert.Equal(t, uint32(640), d.Width())
	assert.Equal(t, uint32(480), d.Height())
	assert.Equal(t, apngdec.FormatRGBA16, d.Format())
	assert.Equal(t, 4, d.Components())
	assert.Equal(t, 64, d.BitsPerPixel())
	assert.Equal(t, 16, d.BitDepth())

	// Parsing again is a no-op.
	require.NoError(t, d.ParseHeader())
	assert.Equal(t, apngdec.StateHeader, d.State())
}

func TestLoadAccumulatesGlobalChunks(t *testing.T) {
	src := pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: 4, Height: 1, BitDepth: 8, ColorType: 3}).
		OFFS(-3, 7).
		PLTE([]byte{1, 2, 3, 4, 5, 6}).
		PLTE([]byte{255, 0, 0, 0, 255, 0, 0, 0, 255}).
		TRNS([]byte{0, 128}).
		Chunk("tEXt", []byte("Title\x00palette")).
		ACTL(1, 0).
		IDAT(compressRows([]byte{0, 1, 2, 3}, 4, 1)).
		IEND().
		Bytes()

	d := apngdec.New(src)
	require.NoError(t, d.Load())
	assert.Equal(t, apngdec.StateLoaded, d.State())
	assert.Equal(t, int32(-3), d.XOffset())
	assert.Equal(t, int32(7), d.YOffset())
	assert.Equal(t, []apngdec.RGB{{R: 255}, {G: 255}, {B: 255}}, d.Palette())
	assert.Equal(t, []uint8{0, 128}, d.AlphaPalette())
	assert.True(t, d.IsAnimated())
	assert.Equal(t, uint32(1), d.NumFrames())
	assert.Equal(t, uint32(0), d.NumPlays())
	assert.Nil(t, d.Pixels(), "Load must not decode")

	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, []byte{0, 1, 2, 3}, d.Pixels())
	assert.Equal(t, apngdec.FormatIndexed8, d.Format())
}

func TestDecodeFramesInOrder(t *testing.T) {
	d := apngdec.NewOwned(animated())

	// DecodeNextFrame loads the header and global chunks on its own.
	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, apngdec.StateDecoded, d.State())
	assert.True(t, d.IsAnimated())
	assert.Equal(t, uint32(2), d.NumFrames())
	assert.Equal(t, uint32(3), d.NumPlays())
	assert.Equal(t, rgba(4, 4, 255, 0, 0, 255), d.Pixels())
	assert.Equal(t, 64, d.Size())
	fc, ok := d.FrameControl()
	require.True(t, ok)
	assert.Equal(t, uint32(0), fc.SequenceNumber)
	assert.Equal(t, uint32(4), fc.Width)
	assert.Equal(t, 100*time.Millisecond, fc.Delay(apngdec.DefaultFrameDelay))

	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, rgba(2, 2, 0, 0, 255, 128), d.Pixels())
	fc, ok = d.FrameControl()
	require.True(t, ok)
	assert.Equal(t, apngdec.FrameControl{
		SequenceNumber: 1,
		Width:          2,
		Height:         2,
		XOffset:        1,
		YOffset:        2,
		DisposeOp:      apngdec.DisposePrevious,
		BlendOp:        apngdec.BlendOver,
	}, fc)
	assert.Equal(t, apngdec.DefaultFrameDelay, fc.Delay(apngdec.DefaultFrameDelay))

	err := d.DecodeNextFrame()
	require.ErrorIs(t, err, apngdec.ErrDone)
	assert.Equal(t, apngdec.StateError, d.State())
	assert.Equal(t, apngdec.Site{}, d.ErrorSite())
	assert.Nil(t, d.Pixels())

	assert.Equal(t, err, d.DecodeNextFrame())

	d.Release()
	assert.ErrorIs(t, d.DecodeNextFrame(), apngdec.ErrDone)
}

func TestDecodeSplitDataChunks(t *testing.T) {
	const w, h = 16, 16
	raw := gray8(w, h)
	z := compressRows(raw, w, 1)
	parts := pngtest.Split(z, 3)
	require.Len(t, parts, 3)

	b := pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: w, Height: h, BitDepth: 8, ColorType: 0}).
		ACTL(2, 0).
		FCTL(pngtest.FrameControl{Width: w, Height: h})
	for _, p := range parts {
		b.IDAT(p)
	}
	b.FCTL(pngtest.FrameControl{Width: w, Height: h})
	for _, p := range parts {
		b.FDAT(p)
	}
	d := apngdec.New(b.IEND().Bytes())

	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, raw, d.Pixels())
	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, raw, d.Pixels())
	assert.ErrorIs(t, d.DecodeNextFrame(), apngdec.ErrDone)
}

func TestDecodeGray8FilterNone(t *testing.T) {
	const w, h = 7, 5
	raw := gray8(w, h)
	src := pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: w, Height: h, BitDepth: 8, ColorType: 0}).
		IDAT(pngtest.Zlib(pngtest.Scanlines(raw, w, 1, pngtest.FilterNone), pngtest.BestSpeed)).
		IEND().
		Bytes()

	d := apngdec.New(src)
	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, apngdec.FormatLuminance8, d.Format())
	assert.Equal(t, raw, d.Pixels())
	assert.Equal(t, w*h, d.Size())
	_, ok := d.FrameControl()
	assert.False(t, ok)
}

func TestDecodeSubByteRowsArePacked(t *testing.T) {
	// Three 1-bit pixels per row: 101, 011.
	src := pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: 3, Height: 2, BitDepth: 1, ColorType: 0}).
		IDAT(compressRows([]byte{0xa0, 0x60}, 1, 1)).
		IEND().
		Bytes()

	d := apngdec.New(src)
	require.NoError(t, d.DecodeNextFrame())
	assert.Equal(t, apngdec.FormatLuminance1, d.Format())
	assert.Equal(t, []byte{0xac}, d.Pixels())
}

func TestDecodeErrors(t *testing.T) {
	header := pngtest.Header{Width: 4, Height: 4, BitDepth: 8, ColorType: 6}
	frame := compressRows(rgba(4, 4, 1, 2, 3, 4), 16, 4)

	tests := []struct {
		name string
		src  []byte
		opts []apngdec.Option
		want apngdec.ErrorCode
	}{
		{
			name: "unknown critical chunk before data",
			src:  pngtest.NewBuilder().IHDR(header).Chunk("ABCD", nil).IDAT(frame).IEND().Bytes(),
			want: apngdec.ErrUnsupported,
		},
		{
			name: "end before data",
			src:  pngtest.NewBuilder().IHDR(header).IEND().Bytes(),
			want: apngdec.ErrMalformed,
		},
		{
			name: "no data",
			src:  pngtest.NewBuilder().IHDR(header).Bytes(),
			want: apngdec.ErrMalformed,
		},
		{
			name: "frame too large",
			src:  pngtest.NewBuilder().IHDR(header).IDAT(frame).IEND().Bytes(),
			opts: []apngdec.Option{apngdec.WithMaxFrameBytes(16)},
			want: apngdec.ErrNoMem,
		},
		{
			name: "short stream",
			src:  pngtest.NewBuilder().IHDR(header).IDAT(compressRows(rgba(4, 3, 1, 2, 3, 4), 16, 4)).IEND().Bytes(),
			want: apngdec.ErrMalformed,
		},
		{
			name: "frame outside image",
			src: pngtest.NewBuilder().IHDR(header).
				FCTL(pngtest.FrameControl{Width: 4, Height: 4, XOffset: 1}).
				IDAT(frame).IEND().Bytes(),
			want: apngdec.ErrMalformed,
		},
		{
			name: "bad dispose op",
			src: pngtest.NewBuilder().IHDR(header).
				FCTL(pngtest.FrameControl{Width: 4, Height: 4, DisposeOp: 3}).
				IDAT(frame).IEND().Bytes(),
			want: apngdec.ErrMalformed,
		},
		{
			name: "palette not a multiple of three",
			src:  pngtest.NewBuilder().IHDR(header).PLTE([]byte{1, 2}).IDAT(frame).IEND().Bytes(),
			want: apngdec.ErrMalformed,
		},
		{
			name: "bad zlib header",
			src:  pngtest.NewBuilder().IHDR(header).IDAT([]byte{0x78, 0x9d, 0x01}).IEND().Bytes(),
			want: apngdec.ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := apngdec.New(tt.src, tt.opts...)
			err := d.DecodeNextFrame()
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want, d.ErrorCode())
			assert.NotEmpty(t, d.ErrorSite().File)
			assert.Nil(t, d.Pixels())
			assert.Equal(t, err, d.DecodeNextFrame())
		})
	}
}

func TestUnknownCriticalChunkBetweenFrames(t *testing.T) {
	src := pngtest.NewBuilder().
		IHDR(pngtest.Header{Width: 2, Height: 2, BitDepth: 8, ColorType: 0}).
		IDAT(compressRows(gray8(2, 2), 2, 1)).
		Chunk("XYZW", []byte{1}).
		IEND().
		Bytes()

	d := apngdec.New(src)
	require.NoError(t, d.DecodeNextFrame())
	assert.ErrorIs(t, d.DecodeNextFrame(), apngdec.ErrUnsupported)
}

func TestChunkLengthPastEnd(t *testing.T) {
	src := stillGray8(3, 3)
	// Point the IDAT length far past the end of the buffer.
	binary.BigEndian.PutUint32(src[33:37], 0x7fffffff)

	d := apngdec.New(src)
	assert.ErrorIs(t, d.Load(), apngdec.ErrMalformed)

	binary.BigEndian.PutUint32(src[33:37], 0xffffffff)
	d = apngdec.New(src)
	assert.ErrorIs(t, d.Load(), apngdec.ErrMalformed)
}

// Every strict prefix of a valid file must fail cleanly.
func TestTruncatedInput(t *testing.T) {
	for _, src := range [][]byte{animated(), stillGray8(5, 5)} {
		for n := 0; n < len(src); n++ {
			prefix := append([]byte(nil), src[:n]...)
			var err error
			require.NotPanics(t, func() {
				d := apngdec.New(prefix)
				for err == nil {
					err = d.DecodeNextFrame()
				}
			}, "prefix of %d bytes", n)
			assert.False(t, errors.Is(err, apngdec.ErrDone), "prefix of %d bytes reached IEND", n)
		}

		d := apngdec.New(src)
		var err error
		for err == nil {
			err = d.DecodeNextFrame()
		}
		assert.ErrorIs(t, err, apngdec.ErrDone)
	}
}
