package pngtest

import (
	"bytes"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// Compression levels accepted by Zlib and Deflate.
const (
	NoCompression      = flate.NoCompression
	BestSpeed          = flate.BestSpeed
	DefaultCompression = flate.DefaultCompression
	BestCompression    = flate.BestCompression
	HuffmanOnly        = flate.HuffmanOnly
)

// Zlib compresses data into a zlib stream at the given level. It panics on
// an invalid level.
func Zlib(data []byte, level int) []byte {
	var buf bytes.Buffer
	z, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		panic(err)
	}
	if _, err := z.Write(data); err != nil {
		panic(err)
	}
	if err := z.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Deflate compresses data into a raw DEFLATE stream at the given level.
func Deflate(data []byte, level int) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(data); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Split cuts z into n nearly equal parts for writing across several data
// chunks.
func Split(z []byte, n int) [][]byte {
	if n < 1 {
		n = 1
	}
	parts := make([][]byte, 0, n)
	size := (len(z) + n - 1) / n
	for len(z) > size {
		parts = append(parts, z[:size])
		z = z[size:]
	}
	return append(parts, z)
}
