package apngdec

import (
	"errors"
	"math"

	"github.com/rs/zerolog"
)

const (
	minPNGSize = 29 // signature + IHDR up to the interlace byte
	firstChunk = 33 // first byte after the IHDR chunk
)

// Decoder decodes one PNG or APNG image held in memory, one frame per call
// to DecodeNextFrame. A Decoder is not safe for concurrent use.
type Decoder struct {
	width     uint32
	height    uint32
	xOffset   int32
	yOffset   int32
	colorType ColorType
	bitDepth  uint8
	format    Format

	palette      []RGB
	alphaPalette []uint8

	// cursor is the offset of the next chunk to scan in src.
	cursor int
	// pixels holds the current frame only and is replaced on each decode.
	pixels []byte

	animated        bool
	animation       AnimationControl
	frameControl    FrameControl
	hasFrameControl bool

	state State
	err   *Error

	src   []byte
	owned bool

	opts Options
	log  *zerolog.Logger
}

// New returns a Decoder reading from src. The caller keeps ownership of src
// and must not modify it while the Decoder is in use.
func New(src []byte, opts ...Option) *Decoder {
	o := newOptions(opts)
	return &Decoder{
		src:    src,
		opts:   o,
		log:    o.Logger,
		format: FormatInvalid,
	}
}

// NewOwned is like New but hands ownership of src to the Decoder, which
// drops it on Release.
func NewOwned(src []byte, opts ...Option) *Decoder {
	d := New(src, opts...)
	d.owned = true
	return d
}

// Release drops the decoded frame and, for owned sources, the source
// buffer. The Decoder cannot be used afterwards.
func (d *Decoder) Release() {
	d.pixels = nil
	d.palette = nil
	d.alphaPalette = nil
	if d.owned {
		d.src = nil
	}
	if d.err == nil {
		d.err = fail(ErrParam)
	}
	d.state = StateError
}

func (d *Decoder) setError(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = newError(ErrMalformed, 1)
	}
	d.err = e
	d.state = StateError
	d.pixels = nil

	if e.Code == ErrDone {
		d.log.Debug().Int("offset", d.cursor).Msg("reached end of image")
	} else {
		d.log.Warn().
			Err(e).
			Object("site", e.Site).
			Int("offset", d.cursor).
			Msg("decode failed")
	}
	return e
}

func (d *Decoder) transition(to State) error {
	if !canTransition(d.state, to) {
		return d.setError(fail(ErrParam))
	}
	if d.state != to {
		d.log.Debug().Stringer("from", d.state).Stringer("to", to).Msg("state transition")
	}
	d.state = to
	return nil
}

// ParseHeader checks the PNG signature and reads the IHDR chunk. It does
// nothing once the header has been parsed.
func (d *Decoder) ParseHeader() error {
	if d.err != nil {
		return d.err
	}
	if d.state != StateNew {
		return nil
	}

	if len(d.src) < minPNGSize {
		return d.setError(fail(ErrNotPNG))
	}
	if string(d.src[:len(pngHeader)]) != pngHeader {
		return d.setError(fail(ErrNotPNG))
	}
	if readUint32(d.src[12:16]) != chunkIHDR {
		return d.setError(malformed())
	}

	d.width = readUint32(d.src[16:20])
	d.height = readUint32(d.src[20:24])
	d.bitDepth = d.src[24]
	d.colorType = ColorType(d.src[25])

	d.format = determineFormat(d.colorType, d.bitDepth)
	if d.format == FormatInvalid {
		return d.setError(fail(ErrUnsupportedFormat))
	}
	if d.width == 0 || d.height == 0 || d.width > math.MaxInt32 || d.height > math.MaxInt32 {
		return d.setError(malformed())
	}
	// Compression and filter method 0 are the only ones defined.
	if d.src[26] != 0 || d.src[27] != 0 {
		return d.setError(malformed())
	}
	if d.src[28] != 0 {
		return d.setError(fail(ErrInterlaced))
	}

	d.log.Debug().
		Uint32("width", d.width).
		Uint32("height", d.height).
		Stringer("format", d.format).
		Msg("parsed header")
	return d.transition(StateHeader)
}

// Load parses the chunks between IHDR and the first IDAT: palette,
// transparency, offsets and animation control. It stops with the cursor on
// the first IDAT chunk.
func (d *Decoder) Load() error {
	if d.err != nil {
		return d.err
	}
	if d.state == StateNew {
		if err := d.ParseHeader(); err != nil {
			return err
		}
	}
	if d.state != StateHeader {
		return nil
	}

	d.cursor = firstChunk
	for d.cursor < len(d.src) {
		c, err := chunkAt(d.src, d.cursor)
		if err != nil {
			return d.setError(err)
		}

		switch c.typ {
		case chunkOFFS:
			d.xOffset, d.yOffset, err = parseOffset(c.data)
		case chunkPLTE:
			d.palette, err = parsePalette(c.data)
		case chunkTRNS:
			d.alphaPalette, err = parseTransparency(c.data)
		case chunkFCTL:
			err = d.readFrameControl(c.data)
		case chunkACTL:
			d.animation, err = parseAnimationControl(c.data)
			d.animated = err == nil
		case chunkIDAT:
			return d.transition(StateLoaded)
		case chunkIEND:
			return d.setError(malformed())
		default:
			if isCritical(c.typ) {
				d.cursor = c.next
				return d.setError(fail(ErrUnsupported))
			}
			d.skipChunk(c)
		}
		if err != nil {
			return d.setError(err)
		}
		d.cursor = c.next
	}
	return d.setError(malformed())
}

// DecodeNextFrame decodes the next IDAT or fdAT run into the pixel buffer,
// replacing the previous frame. At IEND it returns ErrDone and the Decoder
// accepts no further calls.
func (d *Decoder) DecodeNextFrame() error {
	if d.err != nil {
		return d.err
	}
	if d.state == StateNew || d.state == StateHeader {
		if err := d.Load(); err != nil {
			return err
		}
	}

	d.pixels = nil

	compressed, err := d.nextFrameData()
	if err != nil {
		return d.setError(err)
	}

	w, h, err := d.frameSize()
	if err != nil {
		return d.setError(err)
	}

	bpp := d.BitsPerPixel()
	linebytes := (uint64(w)*uint64(bpp) + 7) / 8
	size := linebytes*uint64(h) + uint64(h)
	if size > d.opts.MaxFrameBytes || size > math.MaxInt32 {
		return d.setError(fail(ErrNoMem))
	}
	buf := make([]byte, size)

	n, err := zlibInflate(buf, compressed)
	if err != nil {
		return d.setError(err)
	}
	if n != len(buf) {
		return d.setError(malformed())
	}

	m, err := postProcessScanlines(buf, w, h, bpp)
	if err != nil {
		return d.setError(err)
	}

	d.pixels = buf[:m]
	d.log.Debug().
		Int("width", w).
		Int("height", h).
		Int("compressed", len(compressed)).
		Int("size", m).
		Msg("decoded frame")
	return d.transition(StateDecoded)
}

// nextFrameData scans from the cursor to the next image data and returns
// its compressed bytes, leaving the cursor after the data chunks.
func (d *Decoder) nextFrameData() ([]byte, error) {
	for d.cursor < len(d.src) {
		c, err := chunkAt(d.src, d.cursor)
		if err != nil {
			return nil, err
		}

		switch c.typ {
		case chunkFCTL:
			if err := d.readFrameControl(c.data); err != nil {
				return nil, err
			}
		case chunkIDAT, chunkFDAT:
			return d.collectFrameData(c)
		case chunkIEND:
			d.cursor = c.next
			return nil, fail(ErrDone)
		default:
			if isCritical(c.typ) {
				d.cursor = c.next
				return nil, fail(ErrUnsupported)
			}
			d.skipChunk(c)
		}
		d.cursor = c.next
	}
	return nil, malformed()
}

// collectFrameData joins first with the chunks of the same type directly
// after it. A lone chunk is returned without copying.
func (d *Decoder) collectFrameData(first chunk) ([]byte, error) {
	payload, err := frameData(first)
	if err != nil {
		return nil, err
	}
	d.cursor = first.next

	var joined []byte
	for d.cursor < len(d.src) {
		c, err := chunkAt(d.src, d.cursor)
		if err != nil || c.typ != first.typ {
			// A broken chunk is reported by the next scan.
			break
		}
		more, err := frameData(c)
		if err != nil {
			return nil, err
		}
		if joined == nil {
			joined = append(make([]byte, 0, len(payload)+len(more)), payload...)
		}
		joined = append(joined, more...)
		d.cursor = c.next
	}
	if joined != nil {
		return joined, nil
	}
	return payload, nil
}

// frameData strips the sequence number from fdAT chunks.
func frameData(c chunk) ([]byte, error) {
	if c.typ != chunkFDAT {
		return c.data, nil
	}
	if len(c.data) < sizeOfUint32 {
		return nil, malformed()
	}
	return c.data[sizeOfUint32:], nil
}

func (d *Decoder) readFrameControl(data []byte) error {
	fc, err := parseFrameControl(data)
	if err != nil {
		return err
	}
	d.frameControl = fc
	d.hasFrameControl = true
	d.log.Debug().
		Uint32("sequence", fc.SequenceNumber).
		Uint32("width", fc.Width).
		Uint32("height", fc.Height).
		Stringer("dispose", fc.DisposeOp).
		Stringer("blend", fc.BlendOp).
		Msg("frame control")
	return nil
}

func (d *Decoder) skipChunk(c chunk) {
	d.log.Debug().
		Str("chunk", chunkName(c.typ)).
		Int("length", len(c.data)).
		Int("offset", d.cursor).
		Msg("skipping ancillary chunk")
}

// frameSize is the size of the current frame, which must fit in the image.
func (d *Decoder) frameSize() (int, int, error) {
	if !d.hasFrameControl {
		return int(d.width), int(d.height), nil
	}
	fc := d.frameControl
	if fc.Width == 0 || fc.Height == 0 {
		return 0, 0, malformed()
	}
	if uint64(fc.XOffset)+uint64(fc.Width) > uint64(d.width) ||
		uint64(fc.YOffset)+uint64(fc.Height) > uint64(d.height) {
		return 0, 0, malformed()
	}
	return int(fc.Width), int(fc.Height), nil
}

// Width is the image width from IHDR.
func (d *Decoder) Width() uint32 { return d.width }

// Height is the image height from IHDR.
func (d *Decoder) Height() uint32 { return d.height }

// XOffset and YOffset come from the oFFs chunk, if any.
func (d *Decoder) XOffset() int32 { return d.xOffset }
func (d *Decoder) YOffset() int32 { return d.yOffset }

// BitDepth is the number of bits per sample.
func (d *Decoder) BitDepth() int { return int(d.bitDepth) }

// Format combines the color type and bit depth.
func (d *Decoder) Format() Format { return d.format }

// ColorType is the IHDR color type.
func (d *Decoder) ColorType() ColorType { return d.colorType }

// Components is the number of samples per pixel.
func (d *Decoder) Components() int { return d.colorType.components() }

// BitsPerPixel is BitDepth times Components.
func (d *Decoder) BitsPerPixel() int {
	return int(d.bitDepth) * d.Components()
}

// Palette returns the PLTE entries. The slice is owned by the Decoder.
func (d *Decoder) Palette() []RGB { return d.palette }

// AlphaPalette returns the tRNS entries, index-aligned with Palette.
// Palette entries past its end are opaque.
func (d *Decoder) AlphaPalette() []uint8 { return d.alphaPalette }

// Pixels returns the current frame: unfiltered rows, with sub-byte pixels
// packed without row padding. It is nil until a frame has been decoded and
// is replaced by the next call to DecodeNextFrame.
func (d *Decoder) Pixels() []byte { return d.pixels }

// Size is the length in bytes of the current frame's pixels.
func (d *Decoder) Size() int { return len(d.pixels) }

// State reports where the decoder is in its lifecycle.
func (d *Decoder) State() State { return d.state }

// Err returns the sticky error, or nil.
func (d *Decoder) Err() error {
	if d.err == nil {
		return nil
	}
	return d.err
}

// ErrorCode returns the code of the sticky error, or 0.
func (d *Decoder) ErrorCode() ErrorCode {
	if d.err == nil {
		return 0
	}
	return d.err.Code
}

// ErrorSite returns where the sticky error was detected.
func (d *Decoder) ErrorSite() Site {
	if d.err == nil {
		return Site{}
	}
	return d.err.Site
}

// IsAnimated reports whether an acTL chunk was seen.
func (d *Decoder) IsAnimated() bool { return d.animated }

// NumFrames is the frame count from acTL, or 0 without one.
func (d *Decoder) NumFrames() uint32 { return d.animation.NumFrames }

// NumPlays is the loop count from acTL; 0 means loop forever.
func (d *Decoder) NumPlays() uint32 { return d.animation.NumPlays }

// FrameControl returns the most recently parsed fcTL record.
func (d *Decoder) FrameControl() (FrameControl, bool) {
	return d.frameControl, d.hasFrameControl
}
