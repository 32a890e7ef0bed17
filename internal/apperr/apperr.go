// Package apperr defines the service-wide error taxonomy. Every failure a
// handler can return maps to one of five stable numeric codes, so clients can
// branch on codes instead of parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable numeric error code exposed to API clients.
type Code int

const (
	// CodeParams covers malformed, missing, or contradictory input.
	CodeParams Code = 40000
	// CodeNoAuth covers ownership and role violations.
	CodeNoAuth Code = 40101
	// CodeNotFound covers missing pictures and spaces.
	CodeNotFound Code = 40400
	// CodeSystem covers object-store and network failures.
	CodeSystem Code = 50000
	// CodeOperation covers state conflicts: quota exhausted, failed writes,
	// missing ingest markup.
	CodeOperation Code = 50001
)

// Error is a coded application error. Cause, when set, is retained for
// logging and unwrapping but never shown to clients.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error retaining cause for logs and errors.Is/As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Params returns a PARAMS_ERROR.
func Params(message string) *Error { return New(CodeParams, message) }

// NoAuth returns a NO_AUTH_ERROR.
func NoAuth(message string) *Error { return New(CodeNoAuth, message) }

// NotFound returns a NOT_FOUND_ERROR.
func NotFound(message string) *Error { return New(CodeNotFound, message) }

// Operation returns an OPERATION_ERROR.
func Operation(message string) *Error { return New(CodeOperation, message) }

// System returns a SYSTEM_ERROR wrapping cause.
func System(message string, cause error) *Error {
	return Wrap(CodeSystem, message, cause)
}

// CodeOf extracts the numeric code from err, defaulting to CodeSystem for
// errors that did not originate in this package.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeSystem
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
