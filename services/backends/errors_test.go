package backends

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError("gpt-1", CodeUnreachable, "http request failed", 0, cause)

	assert.Contains(t, err.Error(), "gpt-1")
	assert.Contains(t, err.Error(), "unreachable")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestErrorCode(t *testing.T) {
	err := NewError("gpt-1", CodeRateLimited, "slow down", http.StatusTooManyRequests, nil)

	assert.Equal(t, CodeRateLimited, ErrorCode(err))
	assert.Equal(t, CodeRateLimited, ErrorCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, Code(""), ErrorCode(errors.New("plain")))
	assert.Equal(t, Code(""), ErrorCode(nil))
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Code
	}{
		{http.StatusUnauthorized, CodeAuthFailure},
		{http.StatusForbidden, CodeAuthFailure},
		{http.StatusTooManyRequests, CodeRateLimited},
		{http.StatusRequestTimeout, CodeTimeout},
		{http.StatusGatewayTimeout, CodeTimeout},
		{http.StatusInternalServerError, CodeUnreachable},
		{http.StatusBadGateway, CodeUnreachable},
		{http.StatusBadRequest, CodeMalformed},
		{http.StatusNotFound, CodeMalformed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyStatus(tt.status), "status %d", tt.status)
	}
}

func TestClassifyTransport(t *testing.T) {
	assert.Equal(t, CodeTimeout, classifyTransport(context.DeadlineExceeded))
	assert.Equal(t, CodeTimeout, classifyTransport(fmt.Errorf("do: %w", context.Canceled)))
	assert.Equal(t, CodeUnreachable, classifyTransport(errors.New("dial tcp: refused")))
}
