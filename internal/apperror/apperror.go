// Package apperror is the error taxonomy shared by the services and the HTTP
// layer. Services return *Error values; the API maps Kind to a status code.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindForbidden        Kind = "FORBIDDEN"
	KindInvalidState     Kind = "INVALID_STATE"
	KindConflict         Kind = "CONFLICT"
	KindInvalidReference Kind = "INVALID_REFERENCE"
	KindAuth             Kind = "AUTH_ERROR"
	KindUnavailable      Kind = "UNAVAILABLE"
	KindInternal         Kind = "INTERNAL"
)

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrInvalidReference = &Error{Kind: KindInvalidReference}
	ErrAuth             = &Error{Kind: KindAuth}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
)

type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func InvalidState(message string) *Error { return New(KindInvalidState, message) }
func Auth(message string) *Error         { return New(KindAuth, message) }

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// KindOf reports the kind of err, defaulting to KindInternal for errors that
// are not part of the taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidReference:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
