package apngdec

import (
	"testing"

	"github.com/shutej/apngdec/internal/pngtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZlibInflate(t *testing.T) {
	data := sampleData(5000)
	out := make([]byte, len(data))
	n, err := zlibInflate(out, pngtest.Zlib(data, pngtest.DefaultCompression))
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, out)
}

func TestZlibHeader(t *testing.T) {
	// A stored block holding a single zero byte.
	body := []byte{0x01, 0x01, 0x00, 0xfe, 0xff, 0x00}

	tests := []struct {
		name   string
		header []byte
		ok     bool
	}{
		{"default", []byte{0x78, 0x9c}, true},
		{"small window", []byte{0x08, 0x1d}, true},
		{"bad check bits", []byte{0x78, 0x9d}, false},
		{"method 7", []byte{0x77, 0x09}, false},
		{"window too large", []byte{0x88, 0x1c}, false},
		{"preset dictionary", []byte{0x78, 0x20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append(append([]byte(nil), tt.header...), body...)
			n, err := zlibInflate(make([]byte, 1), in)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, 1, n)
			} else {
				assert.ErrorIs(t, err, ErrMalformed)
			}
		})
	}

	t.Run("too short", func(t *testing.T) {
		_, err := zlibInflate(make([]byte, 1), []byte{0x78})
		assert.ErrorIs(t, err, ErrMalformed)
	})
}
