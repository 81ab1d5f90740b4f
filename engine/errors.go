package engine

import (
	"errors"
	"fmt"
)

// ErrorKind names a member of the error taxonomy.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindMissingParameter ErrorKind = "missing_parameter"
	KindValidation       ErrorKind = "validation"
	KindUpstream         ErrorKind = "upstream"
	KindUnexpected       ErrorKind = "unexpected"
)

// Error is a classified failure. Msg is safe to show to users.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports an unknown operation or an unresolvable column.
func NotFound(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

// MissingParameter reports a required field absent for the chosen operation.
func MissingParameter(format string, args ...any) error {
	return newError(KindMissingParameter, nil, format, args...)
}

// Validation reports parameters that don't satisfy an operation's schema.
func Validation(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

// Upstream wraps a failure of the external parser.
func Upstream(err error, format string, args ...any) error {
	return newError(KindUpstream, err, format, args...)
}

// Unexpected reports any other runtime fault.
func Unexpected(format string, args ...any) error {
	return newError(KindUnexpected, nil, format, args...)
}

// KindOf classifies err; unclassified errors are unexpected.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
