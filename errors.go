package apngdec

import (
	"fmt"
	"path/filepath"

	"github.com/go-stack/stack"
	"github.com/rs/zerolog"
)

// ErrorCode classifies decoder failures. ErrorCode values are themselves
// errors, so callers can test with errors.Is(err, apngdec.ErrDone).
type ErrorCode int

const (
	ErrNoMem             ErrorCode = iota + 1 // a buffer could not be allocated
	ErrNotFound                               // resource not found; reserved for callers
	ErrNotPNG                                 // data does not start with a PNG signature
	ErrMalformed                              // bitstream or chunk structure is invalid
	ErrUnsupported                            // critical chunk type is not supported
	ErrInterlaced                             // interlaced images are not supported
	ErrUnsupportedFormat                      // color type and bit depth combination is not supported
	ErrParam                                  // invalid parameter to a method call
	ErrDone                                   // reached IEND; no more frames
)

var errorCodeText = map[ErrorCode]string{
	ErrNoMem:             "out of memory",
	ErrNotFound:          "resource not found",
	ErrNotPNG:            "not a PNG",
	ErrMalformed:         "malformed stream",
	ErrUnsupported:       "unsupported critical chunk",
	ErrInterlaced:        "interlacing not supported",
	ErrUnsupportedFormat: "unsupported color format",
	ErrParam:             "invalid parameter",
	ErrDone:              "done",
}

func (c ErrorCode) Error() string {
	if s, ok := errorCodeText[c]; ok {
		return "apngdec: " + s
	}
	return fmt.Sprintf("apngdec: error %d", int(c))
}

// Site is the place in the decoder where an error was detected.
type Site struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (s Site) String() string {
	if s.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(s.File), s.Line)
}

func (s Site) MarshalZerologObject(e *zerolog.Event) {
	e.
		Str("file", s.File).
		Int("line", s.Line).
		Str("function", s.Function)
}

// Error is the sticky error stored in a Decoder.
type Error struct {
	Code ErrorCode
	Site Site
}

func (e *Error) Error() string {
	if e.Site.File == "" {
		return e.Code.Error()
	}
	return fmt.Sprintf("%s (at %s)", e.Code.Error(), e.Site)
}

func (e *Error) Unwrap() error {
	return e.Code
}

// newError records the call site skip frames above its caller. ErrDone is
// the normal end of a stream and carries no site.
func newError(code ErrorCode, skip int) *Error {
	if code == ErrDone {
		return &Error{Code: code}
	}
	frame := stack.Caller(skip + 1).Frame()
	return &Error{
		Code: code,
		Site: Site{
			File:     frame.File,
			Line:     frame.Line,
			Function: frame.Function,
		},
	}
}

func fail(code ErrorCode) *Error {
	return newError(code, 1)
}

func malformed() *Error {
	return newError(ErrMalformed, 1)
}
