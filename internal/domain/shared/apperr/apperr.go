package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can branch on "does not exist" versus
// "exists but invalid state" without matching on messages.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindStateConflict Kind = "state_conflict"
	KindForbidden     Kind = "forbidden"
	KindInternal      Kind = "internal"
)

// Error carries a kind and a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New builds a sentinel-friendly error value.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation is shorthand for New(KindValidation, message).
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Validationf formats a validation message.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the first *Error found in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}

// Is reports whether err carries the provided kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ParseKind maps a stored kind string back to a Kind; unknown values become KindInternal.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindValidation, KindNotFound, KindConflict, KindStateConflict, KindForbidden, KindInternal:
		return Kind(raw)
	default:
		return KindInternal
	}
}
