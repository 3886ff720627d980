// Package apngdec decodes PNG and APNG images held in memory, one frame at
// a time. It carries its own zlib and DEFLATE decoder and does not use
// compress/flate.
//
// A Decoder moves through its states in order: ParseHeader reads IHDR, Load
// reads the chunks before the first image data, and each DecodeNextFrame
// inflates and unfilters one IDAT or fdAT run into Pixels. Errors are
// sticky: once a call fails, every later call returns the same *Error, and
// reaching IEND is reported as ErrDone.
//
// Canvas applies the APNG dispose and blend operators to assemble the
// displayed image from successive frames.
//
// For format details, see:
//
// https://wiki.mozilla.org/APNG_Specification
// https://www.w3.org/TR/PNG/
// https://www.rfc-editor.org/rfc/rfc1950
// https://www.rfc-editor.org/rfc/rfc1951
package apngdec
