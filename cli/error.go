package cli

import (
	"errors"
	"fmt"
)

// NewError creates a new error with the given error code and error.
func NewError(code ErrorCode, err error) error {
	return &Error{code: code, err: err}
}

// UsageErrorf formats an error reporting incorrect use of a command. The caller is expected to
// print the command's usage alongside it.
func UsageErrorf(format string, args ...any) error {
	return NewError(ErrUsage, fmt.Errorf(format, args...))
}

// IsUsage reports whether err, or any error it wraps, is a usage error.
func IsUsage(err error) bool {
	var cliErr *Error
	return errors.As(err, &cliErr) && cliErr.code == ErrUsage
}

// ErrorCode represents an error code for a specific error type.
type ErrorCode int

const (
	ErrShowHelp ErrorCode = iota + 1
	ErrUsage
)

func (c ErrorCode) String() string {
	switch c {
	case ErrShowHelp:
		return "show help"
	case ErrUsage:
		return "usage"
	default:
		return "unknown error"
	}
}

// Error represents an error with an error code and an underlying error.
type Error struct {
	code ErrorCode
	err  error
}

// Code returns the error code.
func (e *Error) Code() ErrorCode { return e.code }

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return e.code.String() + ": <nil>"
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// NoExecError is returned when a leaf command has no execution function.
type NoExecError struct {
	Path string
}

func (e *NoExecError) Error() string {
	return fmt.Sprintf("command %q has no execution function", e.Path)
}
