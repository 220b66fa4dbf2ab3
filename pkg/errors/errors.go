// Package errors provides structured error types for jirascope.
//
// Every failure the batch renderer can surface carries a machine-readable
// [Code] so the CLI can tell configuration bugs apart from I/O and render
// failures without parsing messages.
//
// # Error Codes
//
//   - INVALID_*: input and configuration validation failures
//   - UNMAPPED_PRIORITY: a priority missing from the style tables
//   - DANGLING_EDGE: a link references a key outside its subgraph
//   - *_ERROR: source, filesystem, cache and render failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnmappedPriority, "no glyph for priority %q", p)
//	if errors.Is(err, errors.ErrCodeUnmappedPriority) {
//	    // fix the style configuration
//	}
//
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLabel  Code = "INVALID_LABEL"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Diagram encoding errors
	ErrCodeUnmappedPriority Code = "UNMAPPED_PRIORITY"
	ErrCodeDanglingEdge     Code = "DANGLING_EDGE"

	// Collaborator errors
	ErrCodeSource Code = "SOURCE_ERROR"
	ErrCodeIO     Code = "IO_ERROR"
	ErrCodeRender Code = "RENDER_ERROR"
	ErrCodeCache  Code = "CACHE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
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
