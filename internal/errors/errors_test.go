package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Validation("please fill in all required fields")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("save combo: %w", err)
	assert.True(t, Is(wrapped, ErrValidation))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeTransaction, "failed to save")

	assert.True(t, Is(err, ErrTransaction))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save: disk full", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("piece not found")))
	assert.Equal(t, CodeBusy, CodeOf(fmt.Errorf("x: %w", Busy("saving"))))
	assert.Equal(t, CodeInternal, CodeOf(New("plain")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "plain", UserMessage(New("plain")))
	assert.Equal(t, "glaze not found", UserMessage(fmt.Errorf("load: %w", NotFound("glaze not found"))))
}

func TestCode_Title(t *testing.T) {
	assert.Equal(t, "Failed to save", CodeTransaction.Title())
	assert.Equal(t, "Missing information", CodeValidation.Title())
}
