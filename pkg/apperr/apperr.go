// Package apperr defines a small, composable error model with canonical codes,
// exit code mapping, and fluent helpers for building structured errors that the
// emitter returns and the CLI reports.
package apperr

import (
	"errors"
	"fmt"
)

// Suggestion is a per-field hint to fix a configuration error.
type Suggestion struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the canonical error shape returned across packages.
type AppError struct {
	Code        string       `json:"code"`
	Message     string       `json:"message"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	ExitCode    int          `json:"-"`
	cause       error
	ec          *ErrorCode
}

// New creates a new AppError from an ErrorCode.
func New(ec *ErrorCode) *AppError {
	if ec == nil {
		ec = ErrorCodeInternal
	}
	return &AppError{
		Code:     ec.Code(),
		Message:  ec.Message(),
		ExitCode: ec.ExitCode(),
		ec:       ec,
	}
}

// Newf creates AppError with formatted message.
func Newf(ec *ErrorCode, format string, args ...any) *AppError {
	a := New(ec)
	a.Message = fmt.Sprintf(format, args...)
	return a
}

// FromError converts a generic error into an AppError, keeping existing AppErrors
// found anywhere in the chain.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return New(ErrorCodeInternal).Wrap(err)
}

// AddSuggestion appends a field suggestion (fluent)
func (a *AppError) AddSuggestion(field, message string) *AppError {
	if a == nil {
		a = New(ErrorCodeInternal)
	}
	a.Suggestions = append(a.Suggestions, Suggestion{
		Field:   field,
		Message: message,
	})
	return a
}

func (a *AppError) Error() string {
	if a == nil {
		return "<nil>"
	}
	if a.cause != nil {
		return fmt.Sprintf("%s: %v", a.Message, a.cause)
	}
	return a.Message
}

// WithMessage overrides the message and returns the same AppError for chaining.
func (a *AppError) WithMessage(msg string) *AppError {
	if a == nil {
		return New(ErrorCodeInternal).WithMessage(msg)
	}
	a.Message = msg
	return a
}

// Wrap sets the underlying cause and returns the same AppError.
func (a *AppError) Wrap(err error) *AppError {
	if a == nil {
		a = New(ErrorCodeInternal)
	}
	a.cause = err
	return a
}

// Unwrap returns the underlying cause, allowing errors.Unwrap/Is/As to work.
func (a *AppError) Unwrap() error { return a.cause }

// Is reports whether target carries the same code.
func (a *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || a == nil || t == nil {
		return false
	}
	return a.Code == t.Code
}

// HasCode reports whether err is an AppError built from ec.
func HasCode(err error, ec *ErrorCode) bool {
	var ae *AppError
	if !errors.As(err, &ae) || ec == nil {
		return false
	}
	return ae.Code == ec.Code()
}

// ExitCode maps err to a process exit code. A nil error is 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return FromError(err).ExitCode
}
