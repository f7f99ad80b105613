package model

import "fmt"

// Standard error codes.
const (
	ErrBadRequest         = "BAD_REQUEST"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrNotFound           = "NOT_FOUND"
	ErrRemoteError        = "REMOTE_ERROR"
	ErrInternalError      = "INTERNAL_ERROR"
	ErrBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrBackendTimeout     = "BACKEND_TIMEOUT"
)

// ErrorEnvelope is the standard error shape surfaced by every operation.
// It implements the error interface.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Operation names the tool or engine operation that failed.
	Operation string `json:"operation,omitempty"`
	// Status and Body carry the raw remote response for REMOTE_ERROR.
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithOperation returns a copy of the envelope annotated with the operation
// name. The receiver is not modified.
func (e *ErrorEnvelope) WithOperation(op string) *ErrorEnvelope {
	clone := *e
	clone.Operation = op
	return &clone
}

// NewBadRequestError returns a BAD_REQUEST error for invalid caller input.
// No remote call is attempted when one of these is raised.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewUnauthorizedError returns an UNAUTHORIZED error.
func NewUnauthorizedError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrUnauthorized, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewRemoteError returns a REMOTE_ERROR carrying the uninterpreted status
// and response body from the platform.
func NewRemoteError(status int, body string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrRemoteError,
		Message: fmt.Sprintf("API request failed with status %d", status),
		Status:  status,
		Body:    body,
	}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewBackendUnavailableError returns a BACKEND_UNAVAILABLE error.
func NewBackendUnavailableError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrBackendUnavailable,
		Message: "The Metabase instance is unreachable",
	}
}

// NewBackendTimeoutError returns a BACKEND_TIMEOUT error.
func NewBackendTimeoutError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrBackendTimeout,
		Message: "The Metabase instance did not respond in time",
	}
}
