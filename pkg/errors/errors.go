// Package errors provides structured error types for safephase.
//
// Every failure surfaced by the library carries a machine-readable [Code] so
// that the CLI, the HTTP API and library callers can react to a class of
// failure without matching on message text.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (malformed matrices, bad IDs)
//   - *_NOT_FOUND: Resource not found
//   - LIMIT_EXCEEDED: A configured resource guard tripped
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMatrix, "row %d has %d columns, want %d", i, len(row), n)
//	if errors.Is(err, errors.ErrCodeInvalidMatrix) {
//	    // Reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode matrix %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidMatrix     Code = "INVALID_MATRIX"
	ErrCodeAsymmetricMatrix  Code = "ASYMMETRIC_MATRIX"
	ErrCodeInvalidJunction   Code = "INVALID_JUNCTION"
	ErrCodeInvalidPhase      Code = "INVALID_PHASE"
	ErrCodeInvalidState      Code = "INVALID_STATE"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidNetwork    Code = "INVALID_NETWORK"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeJunctionNotFound Code = "JUNCTION_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Resource guards
	ErrCodeLimitExceeded   Code = "LIMIT_EXCEEDED"
	ErrCodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the outermost *Error and compares
// its code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err is a caller input failure, as opposed to
// a backend or internal failure. The HTTP API maps these to 400 responses.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidMatrix, ErrCodeAsymmetricMatrix,
		ErrCodeInvalidJunction, ErrCodeInvalidPhase, ErrCodeInvalidState,
		ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidNetwork,
		ErrCodeUnsupportedFormat, ErrCodeLimitExceeded:
		return true
	}
	return false
}
