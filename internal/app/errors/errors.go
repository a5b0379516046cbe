// Package errors defines the sentinels shared by the bridge, its engines and
// the model resolver.
package errors

import (
	"fmt"
)

var (
	ErrInputNotFound = New("Input file does not exist")
	ErrOutputWrite   = New("failed to write output")

	ErrModelNotFound  = New("model not found")
	ErrEngineNotFound = New("engine not found")
	ErrEngineDisabled = New("engine is disabled")

	ErrInvalidConfig = New("invalid configuration")
)

// Error is a message with an optional cause. Sentinels are plain Errors and
// Wrap puts the sentinel in the chain so errors.Is finds it.
type Error struct {
	message string
	cause   error
}

func New(message string) *Error { return &Error{message: message} }

func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap prefixes err with context. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{message: message, cause: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithDetail reads as "<sentinel>: <detail>" and still matches sentinel.
func WithDetail(sentinel *Error, detail string) error {
	return &Error{message: sentinel.message, cause: New(detail)}
}

// Error renders as "context: cause".
func (e *Error) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is compares by message, so an Error built from the same text as a sentinel
// matches it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.cause == nil && e.message == t.message
}

// RequiredField reports an empty mandatory value.
func RequiredField(field string) error {
	return Newf("%s is required", field)
}
