package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so transports can map them to
// responses without string matching.
type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION"
	KindConflict       ErrorKind = "CONFLICT"
	KindStateViolation ErrorKind = "STATE_VIOLATION"
	KindFatal          ErrorKind = "FATAL"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindForbidden      ErrorKind = "FORBIDDEN"
	KindUnauthorized   ErrorKind = "UNAUTHORIZED"
	KindInternal       ErrorKind = "INTERNAL"
)

// Error is a user-facing workflow error. Message is safe to show to the
// caller; Err carries the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func ConflictError(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func StateViolationError(format string, args ...any) *Error {
	return newError(KindStateViolation, format, args...)
}

func FatalError(format string, args ...any) *Error {
	return newError(KindFatal, format, args...)
}

func NotFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func ForbiddenError(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func UnauthorizedError(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

var (
	// ErrAlreadyProcessed is returned when a decision targets an application
	// that has already left pending_review.
	ErrAlreadyProcessed = StateViolationError("application has already been processed")

	// ErrNoActiveTerm is returned when no academic term is marked active.
	ErrNoActiveTerm = FatalError("no active academic term is configured")
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the message that can be shown to an end user.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}
