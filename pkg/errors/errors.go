package errors

import (
	"errors"
	"fmt"
)

// Process exit codes reported by the CLI.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitPrecondition = 3
	ExitPortal       = 4
	ExitAborted      = 130
)

// Error represents a typed domain error carrying the exit code it maps to.
type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
	Err      error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error by code so wrapped clones compare equal to the
// predefined values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message, Err: err}
}

// Predefined errors.
var (
	ErrUnknownCourse      = New("UNKNOWN_COURSE", ExitPrecondition, "course not provisioned")
	ErrUnknownStudent     = New("UNKNOWN_STUDENT", ExitPrecondition, "student not provisioned")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", ExitPortal, "invalid portal username or password")
	ErrUnexpectedStatus   = New("UNEXPECTED_STATUS", ExitPortal, "unexpected portal response")
	ErrAborted            = New("ABORTED", ExitAborted, "aborted by user")
	ErrValidation         = New("VALIDATION_ERROR", ExitUsage, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", ExitFailure, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.ExitCode, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithCause returns a copy of err wrapping cause.
func WithCause(err *Error, cause error) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Err = cause
	return &clone
}

// ExitCode maps any error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return FromError(err).ExitCode
}
