// Package errors provides coded errors for the forge CLI and HTTP surface.
//
// The core packages return sentinel errors; this package gives the outer
// layers a machine-readable code to report and to map onto exit statuses
// and HTTP status codes.
//
// # Error Codes
//
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: lookups that matched nothing
//   - CONFLICT: an entity that already exists
//   - UNSUPPORTED, INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLayout, "unknown layout %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidLayout) {
//	    // ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeWindowNotFound, cause, "unmap %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidLayout   Code = "INVALID_LAYOUT"
	ErrCodeInvalidMode     Code = "INVALID_MODE"
	ErrCodeInvalidScenario Code = "INVALID_SCENARIO"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidWindowID Code = "INVALID_WINDOW_ID"

	// Lookup errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeWindowNotFound    Code = "WINDOW_NOT_FOUND"
	ErrCodeContainerNotFound Code = "CONTAINER_NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"

	ErrCodeConflict    Code = "CONFLICT"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, or "" if it carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error
// values, and err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the HTTP layer responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidLayout, ErrCodeInvalidMode,
		ErrCodeInvalidScenario, ErrCodeInvalidConfig, ErrCodeInvalidWindowID:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeWindowNotFound, ErrCodeContainerNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
