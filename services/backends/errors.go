package backends

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies why a backend call failed
type Code string

const (
	CodeTimeout     Code = "timeout"
	CodeAuthFailure Code = "auth_failure"
	CodeRateLimited Code = "rate_limited"
	CodeMalformed   Code = "malformed"
	CodeUnreachable Code = "unreachable"
)

// Error represents a failed remote call to a backend. It is raised per
// Submit call and caught at the router's per-candidate boundary.
type Error struct {
	BackendID  string
	Code       Code
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %s: %s: %s: %v", e.BackendID, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("backend %s: %s: %s", e.BackendID, e.Code, e.Message)
}

// Unwrap implements error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a backend error with an explicit code.
func NewError(backendID string, code Code, message string, statusCode int, cause error) *Error {
	return &Error{
		BackendID:  backendID,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ErrorCode extracts the classification from err, or empty when err is not a
// backend error.
func ErrorCode(err error) Code {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// classifyStatus maps an HTTP error status to a failure code.
func classifyStatus(status int) Code {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeAuthFailure
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return CodeTimeout
	case status >= 500:
		return CodeUnreachable
	default:
		return CodeMalformed
	}
}

// classifyTransport maps a transport-level failure to a code. Deadline and
// cancellation surface as timeouts; everything else means the service could
// not be reached.
func classifyTransport(err error) Code {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeTimeout
	}
	return CodeUnreachable
}
