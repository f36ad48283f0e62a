// Package errors implements deltakit's coded error type, ported from the
// teacher repo's pkg/errors and narrowed to the taxonomy in spec.md §7.
package errors

import (
	"fmt"
	"time"
)

// Error is deltakit's structured error: a taxonomy Code plus message,
// optional cause, and free-form string context for diagnostics.
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Context   map[string]string
	Timestamp time.Time
}

// New constructs an Error. cause may be nil.
func New(code Code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Newf constructs an Error with a formatted message.
func Newf(code Code, cause error, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), cause)
}

// AddContext attaches a diagnostic key/value and returns the receiver for chaining.
func (e *Error) AddContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Kind returns the spec §7 taxonomy name, or KindInternal if err isn't ours.
func Kind(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code.Kind()
	}
	return KindInternal
}

// GetCode returns the dotted code string, or "" if err isn't ours.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code.String()
	}
	return ""
}

// Is reports whether err is a *Error carrying the given code.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code.Equals(code)
}
