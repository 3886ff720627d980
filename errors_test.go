package apngdec

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorSite(t *testing.T) {
	err := malformed()
	assert.Equal(t, ErrMalformed, err.Code)
	assert.Equal(t, "errors_test.go", filepath.Base(err.Site.File))
	assert.Contains(t, err.Site.Function, "TestErrorSite")
	assert.Contains(t, err.Error(), "malformed stream (at errors_test.go:")

	assert.True(t, errors.Is(err, ErrMalformed))
	assert.False(t, errors.Is(err, ErrDone))
}

func TestDoneHasNoSite(t *testing.T) {
	err := fail(ErrDone)
	assert.Equal(t, Site{}, err.Site)
	assert.Equal(t, "apngdec: done", err.Error())
}

func TestErrorCodeText(t *testing.T) {
	assert.Equal(t, "apngdec: not a PNG", ErrNotPNG.Error())
	assert.Equal(t, "apngdec: error 42", ErrorCode(42).Error())
}
