package apperrors

import (
	"errors"
)

// Error kinds. Every domain error unwraps to exactly one of these.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAccessDenied    = errors.New("access denied")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal")
)

// Error carries a human readable message alongside its kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an error of the given kind with a user facing message
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Internal wraps an unexpected failure (usually from the storage layer)
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: ErrInternal, Message: err.Error()}
}

// Message returns the message to show to a client
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// KindOf returns the kind of err, or ErrInternal for unclassified errors
func KindOf(err error) error {
	for _, kind := range []error{
		ErrUnauthenticated,
		ErrAccessDenied,
		ErrForbidden,
		ErrNotFound,
		ErrConflict,
		ErrInvalidArgument,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}
