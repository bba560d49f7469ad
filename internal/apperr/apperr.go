// Package apperr defines the error kinds the HTTP layer turns into status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindBadCredentials
	KindUnauthorized
	KindNotFound
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error     { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error       { return &Error{Kind: KindConflict, Message: msg} }
func BadCredentials(msg string) error { return &Error{Kind: KindBadCredentials, Message: msg} }
func Unauthorized(msg string) error   { return &Error{Kind: KindUnauthorized, Message: msg} }
func NotFound(msg string) error       { return &Error{Kind: KindNotFound, Message: msg} }

// Wrap attaches a kind and a client-facing message to err.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns KindInternal for errors that carry no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message, empty for untyped errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindBadCredentials:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
