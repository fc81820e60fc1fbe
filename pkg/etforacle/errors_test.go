package etforacle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormattingAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrCodeRequestFailed, "market insight failed", cause)

	assert.Equal(t, "REQUEST_FAILED: market insight failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NOT_FOUND: missing", NewError(ErrCodeNotFound, "missing").Error())
}

func TestIsErrorCodeThroughWrapping(t *testing.T) {
	inner := NewError(ErrCodeInvalidInput, "bad")
	wrapped := fmt.Errorf("handler: %w", inner)

	assert.True(t, IsErrorCode(wrapped, ErrCodeInvalidInput))
	assert.False(t, IsErrorCode(wrapped, ErrCodeNotFound))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrCodeInvalidInput))
	assert.False(t, IsErrorCode(nil, ErrCodeInvalidInput))
}
