package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := E(CodeUpstreamHTTP, "upstream.FetchIndex", "index returned 503", nil)
	assert.Equal(t, "upstream.FetchIndex: UPSTREAM_HTTP: index returned 503", err.Error())

	bare := E(CodeUpstreamTimeout, "", "", errors.New("deadline exceeded"))
	assert.Equal(t, "UPSTREAM_TIMEOUT: deadline exceeded", bare.Error())
}

func TestCodeFrom(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", E(CodeUpstreamParse, "op", "bad json", nil))

	code, ok := CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, CodeUpstreamParse, code)

	_, ok = CodeFrom(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrap_PreservesExistingError(t *testing.T) {
	inner := E(CodeUpstreamTimeout, "upstream.FetchIndex", "timed out", nil)
	wrapped := Wrap(CodeInternal, "swr.Get", inner)

	code, ok := CodeFrom(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeUpstreamTimeout, code)
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(E(CodeUpstreamTimeout, "", "", nil)))
	assert.True(t, IsRecoverable(E(CodeUpstreamHTTP, "", "", nil)))
	assert.True(t, IsRecoverable(E(CodeUpstreamParse, "", "", nil)))
	assert.False(t, IsRecoverable(E(CodeConfig, "", "", nil)))
	assert.False(t, IsRecoverable(errors.New("plain")))
}
