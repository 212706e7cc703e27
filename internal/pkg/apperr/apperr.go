package apperr

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes surfaced to clients. Streaming clients
// receive them inside the terminal error frame; non-streaming clients in the
// structured error payload.
const (
	CodeValidationFailed   = "validation_failed"
	CodeSessionNotFound    = "session_not_found"
	CodeTokenQuotaExceeded = "token_quota_exceeded"
	CodeProviderExhausted  = "provider_exhausted"
	CodeInternal           = "internal_error"
)

// Error is a coded application error. Code is stable; Message is for humans.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the stable code from any error, defaulting to
// CodeInternal for plain errors.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
