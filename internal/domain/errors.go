package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so transports can map them without inspecting messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindConflict   ErrorKind = "conflict"
	KindDependency ErrorKind = "dependency_failure"
)

// Error carries a stable kind and a message that is safe to show to callers.
// Err holds the underlying cause for logging only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind-only sentinels (ErrNotFound, ErrConflict, ...) against any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrDependency = &Error{Kind: KindDependency}

	ErrInvalidTransition = &Error{Kind: KindConflict, Message: "invalid state transition"}
	ErrDateOverlap       = &Error{Kind: KindConflict, Message: "product is already requested or rented for this period"}
	ErrStaleWrite        = &Error{Kind: KindConflict, Message: "record was modified concurrently"}
)

func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func NewForbiddenError(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewDependencyError hides cause from the message; it is still reachable through errors.Unwrap.
func NewDependencyError(message string, cause error) error {
	return &Error{Kind: KindDependency, Message: message, Err: cause}
}

// NewInvalidTransitionError reports an event that the current status does not accept.
func NewInvalidTransitionError(from RentalStatus, event RentalEvent) error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("cannot %s a rental request that is %s", event, from),
		Err:     ErrInvalidTransition,
	}
}

// KindOf returns the kind of err, or KindDependency for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDependency
}

// Expected reports whether the error is a caller-side failure rather than an outage.
func (e *Error) Expected() bool {
	return e.Kind != KindDependency
}
