package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the category the request layer maps to a
// status code. Every service operation fails with the most specific kind
// that applies.
type Kind string

const (
	// KindNotFound means a referenced entity does not exist
	KindNotFound Kind = "not_found"
	// KindConflict means the operation lost to concurrent or prior state
	// (duplicate follow, unfollow without follow, duplicate private conversation)
	KindConflict Kind = "conflict"
	// KindForbidden means the acting user is not allowed to do this
	KindForbidden Kind = "forbidden"
	// KindValidation means the input is malformed
	KindValidation Kind = "validation"
	// KindUnauthenticated means no valid caller identity was supplied
	KindUnauthenticated Kind = "unauthenticated"
	// KindInternal means a storage or infrastructure failure
	KindInternal Kind = "internal"
)

// Error is the application error type with a kind and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound creates a not-found error
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict creates a conflict error
func Conflict(message string) *Error { return New(KindConflict, message) }

// Forbidden creates a forbidden error
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Validation creates a validation error
func Validation(message string) *Error { return New(KindValidation, message) }

// Unauthenticated creates an unauthenticated error
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Internal wraps a storage or infrastructure failure. The cause stays
// attached for logs but is never shown to clients.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the kind of err, walking wrapped errors. Errors that are
// not *Error are treated as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err (or anything it wraps) has the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
