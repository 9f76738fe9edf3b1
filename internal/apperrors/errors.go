// Package apperrors carries the error taxonomy shared by the engine services.
// Handlers translate codes to HTTP statuses in one place; services and
// repositories never import echo.
package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure for callers
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal"
)

// Error is a classified, human-readable failure
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As
func (e *Error) Unwrap() error { return e.Err }

// InvalidInput reports a caller-fixable bad identifier or enum value
func InvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg}
}

// NotFound reports a missing entity. Privacy-denied reads also use NotFound
// so that invisible content is indistinguishable from absent content.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Conflict reports that the state already matches the desired end-state
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Forbidden reports a failed role or ownership check on a known entity
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Internal wraps an unexpected store failure
func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// CodeOf extracts the taxonomy code, defaulting to CodeInternal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err classifies as a missing or invisible entity
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsConflict reports whether err classifies as an already-satisfied state
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }
