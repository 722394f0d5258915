package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendError_Retryable(t *testing.T) {
	tests := []struct {
		kind      ErrorKind
		retryable bool
	}{
		{KindUnknown, false},
		{KindAuthentication, false},
		{KindRateLimit, true},
		{KindBadRequest, false},
		{KindNotFound, false},
		{KindServerError, true},
		{KindContentPolicy, false},
		{KindNetwork, true},
		{KindTimeout, true},
		{KindProtocol, false},
	}

	for _, tt := range tests {
		err := NewBackendError("test", tt.kind, 0, "msg", nil)
		assert.Equal(t, tt.retryable, err.Retryable(), "kind %d", tt.kind)
	}
}

func TestBackendError_RateLimited(t *testing.T) {
	assert.True(t, NewBackendError("test", KindRateLimit, 429, "", nil).RateLimited())
	assert.False(t, NewBackendError("test", KindServerError, 500, "", nil).RateLimited())
}

func TestBackendError_Error(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewBackendError("openai", KindServerError, 502, "bad gateway", inner)

	msg := err.Error()
	assert.Contains(t, msg, "openai error")
	assert.Contains(t, msg, "HTTP 502")
	assert.Contains(t, msg, "server_error")
	assert.Contains(t, msg, "bad gateway")
	assert.Contains(t, msg, "connection reset")
}

func TestBackendError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := NewBackendError("test", KindNetwork, 0, "", inner)
	assert.ErrorIs(t, err, inner)
}

func TestClassify(t *testing.T) {
	be := NewBackendError("test", KindRateLimit, 429, "slow down", nil)
	assert.Equal(t, KindRateLimit, Classify(be))

	// Wrapped BackendError values still classify.
	wrapped := fmt.Errorf("attempt 2: %w", be)
	assert.Equal(t, KindRateLimit, Classify(wrapped))

	// Arbitrary errors are unknown and therefore permanent.
	assert.Equal(t, KindUnknown, Classify(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRateLimited(errors.New("plain")))

	assert.True(t, IsRetryable(wrapped))
	assert.True(t, IsRateLimited(wrapped))
}

func TestErrorClassifier_ClassifyHTTPError(t *testing.T) {
	ec := &ErrorClassifier{Provider: "cerebras"}

	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{401, KindAuthentication},
		{403, KindAuthentication},
		{429, KindRateLimit},
		{400, KindBadRequest},
		{404, KindNotFound},
		{500, KindServerError},
		{502, KindServerError},
		{503, KindServerError},
		{504, KindServerError},
		{418, KindBadRequest},
		{599, KindServerError},
		{302, KindUnknown},
	}

	for _, tt := range tests {
		err := ec.ClassifyHTTPError(tt.status, "detail", nil)
		require.NotNil(t, err)
		assert.Equal(t, tt.kind, err.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, err.StatusCode)
		assert.Equal(t, "cerebras", err.Provider)
	}
}

func TestErrorClassifier_ClassifyContextError(t *testing.T) {
	ec := &ErrorClassifier{Provider: "anthropic"}

	deadline := ec.ClassifyContextError(context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, deadline.Kind)
	assert.True(t, deadline.Retryable())

	canceled := ec.ClassifyContextError(context.Canceled)
	assert.Equal(t, KindNetwork, canceled.Kind)

	other := ec.ClassifyContextError(errors.New("something else"))
	assert.Equal(t, KindUnknown, other.Kind)
}

func TestErrorClassifier_ClassifyProtocolViolation(t *testing.T) {
	ec := &ErrorClassifier{Provider: "google"}

	err := ec.ClassifyProtocolViolation("no tool call in response", nil)
	assert.Equal(t, KindProtocol, err.Kind)
	assert.False(t, err.Retryable())
	assert.Contains(t, err.Error(), "no tool call in response")
}
