package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can map it to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalid
	KindAlreadyExists
	KindForbidden
	KindUnauthenticated
	KindUpstream
)

// Error carries a kind and a human-readable message suitable for the
// response body. The wrapped cause, if any, stays server-side.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new Error. The cause is preserved for
// errors.Is/As but never rendered to the client.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Invalid(format string, args ...interface{}) *Error {
	return New(KindInvalid, format, args...)
}

func AlreadyExists(format string, args ...interface{}) *Error {
	return New(KindAlreadyExists, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

func Unauthenticated(format string, args ...interface{}) *Error {
	return New(KindUnauthenticated, format, args...)
}

func Upstream(cause error, format string, args ...interface{}) *Error {
	return Wrap(KindUpstream, cause, format, args...)
}

func Internal(cause error, format string, args ...interface{}) *Error {
	return Wrap(KindInternal, cause, format, args...)
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
