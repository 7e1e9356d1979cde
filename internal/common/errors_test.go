package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewEngineError("tesseract failed", cause)

	assert.Equal(t, "ENGINE: tesseract failed: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewInputError("not a PDF", nil)
	assert.Equal(t, "INPUT: not a PDF", bare.Error())
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(NewInputError("file not found", nil)))
	assert.True(t, IsInputError(fmt.Errorf("wrapped: %w", NewInputError("bad pdf", nil))))
	assert.False(t, IsInputError(NewEngineError("crash", nil)))
	assert.False(t, IsInputError(errors.New("plain")))
	assert.False(t, IsInputError(nil))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "context"))

	base := errors.New("boom")
	wrapped := WrapError(base, "doing thing")
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "doing thing: boom", wrapped.Error())
}
