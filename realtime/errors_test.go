package realtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michat/michat-api/databases"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeMuted, CodeOf(NewError(CodeMuted, "you are muted")))
	assert.Equal(t, CodeMuted, CodeOf(fmt.Errorf("routing: %w", NewError(CodeMuted, "you are muted"))))
	assert.Equal(t, CodeUnavailable, CodeOf(errors.New("dial tcp: connection refused")))
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(NewError(CodeForbidden, "account banned")))
	assert.True(t, Fatal(NewError(CodeUnauthorized, "unknown user")))
	assert.False(t, Fatal(NewError(CodeMuted, "you are muted")))
	assert.False(t, Fatal(NewError(CodeInvalidTarget, "unknown recipient")))
	assert.False(t, Fatal(errors.New("storage down")))
}

func TestFromStore(t *testing.T) {
	assert.Equal(t, CodeValidation, fromStore(databases.ErrEmptyContent).Code)
	assert.Equal(t, CodeValidation, fromStore(databases.ErrContentTooLong).Code)
	assert.Equal(t, CodeNotFound, fromStore(databases.ErrNotFound).Code)
	assert.Equal(t, CodeUnavailable, fromStore(errors.New("timeout")).Code)
}

func TestNewErrorFrame(t *testing.T) {
	frame := NewErrorFrame(NewError(CodeInvalidPayload, "malformed frame"))
	assert.Equal(t, FrameTypeError, frame.Type)
	assert.Equal(t, CodeInvalidPayload, frame.Code)
	assert.Equal(t, "malformed frame", frame.Detail)

	frame = NewErrorFrame(errors.New("raw failure"))
	assert.Equal(t, CodeUnavailable, frame.Code)
	assert.Equal(t, "internal error", frame.Detail)
}
