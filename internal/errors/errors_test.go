package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("PORT is required")
	wrapped := Wrap(base, "failed to load server configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "failed to load server configuration: PORT is required", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := Wrapf(cause, "step %d failed", 3)

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "step 3 failed: boom", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestInvalidConfigurationUnwraps(t *testing.T) {
	sentinel := stderrors.New("invalid configuration: step_size must be positive")
	err := InvalidConfiguration(sentinel)

	assert.Equal(t, CodeInvalidConfiguration, GetCode(err))
	assert.True(t, stderrors.Is(err, sentinel))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeNotFound, stderrors.New("session abc"))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}
