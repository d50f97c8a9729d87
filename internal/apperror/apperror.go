package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindAuthorization Kind = "FORBIDDEN"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindInvalidState  Kind = "INVALID_STATE"
	KindConflict      Kind = "CONFLICT"
)

type Error struct {
	Kind    Kind
	Message string
	Details any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

var (
	ErrForbidden    = &Error{Kind: KindAuthorization}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrConflict     = &Error{Kind: KindConflict}
)

func Forbidden(capability string) *Error {
	return &Error{
		Kind:    KindAuthorization,
		Message: "You don't have permission to perform this action",
		Details: map[string]string{"capability": capability},
	}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// Conflict reports a clash with an existing record, such as a taken name.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of err, or "" for errors this package did not make.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
