package apngdec

import "github.com/rs/zerolog"

// DefaultMaxFrameBytes bounds the inflated size of a single frame.
const DefaultMaxFrameBytes = 256 << 20

// Options configure a Decoder.
type Options struct {
	Logger        *zerolog.Logger
	MaxFrameBytes uint64
}

type Option func(*Options)

// WithLogger sets the logger that receives chunk-level debug events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMaxFrameBytes sets the largest inflated frame the decoder will
// allocate. Larger frames fail with ErrNoMem.
func WithMaxFrameBytes(n uint64) Option {
	return func(o *Options) {
		o.MaxFrameBytes = n
	}
}

func newOptions(opts []Option) Options {
	nop := zerolog.Nop()
	o := Options{
		Logger:        &nop,
		MaxFrameBytes: DefaultMaxFrameBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = &nop
	}
	return o
}
