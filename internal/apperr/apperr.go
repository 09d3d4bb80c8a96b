// Package apperr defines the typed failure values used by every service
// operation. A failure carries an HTTP status class, a human-readable
// message and optional structured detail; the handler layer renders it
// exactly once, at the boundary.
package apperr

import (
	"errors"
	"net/http"
	"runtime/debug"
)

// GenericMessage is the caller-visible message for internal failures.
// Internal detail never leaks through the boundary.
const GenericMessage = "something went wrong"

// Error is a domain failure with a transport status class.
type Error struct {
	Status  int
	Message string
	Extra   map[string]any
	// Stack is captured at construction and rendered only in development.
	Stack []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

func newError(status int, msg string, extra ...map[string]any) *Error {
	e := &Error{
		Status:  status,
		Message: msg,
		Stack:   debug.Stack(),
	}
	if len(extra) > 0 {
		e.Extra = extra[0]
	}
	return e
}

// BadRequest builds a 400 failure for malformed or incomplete caller input.
func BadRequest(msg string, extra ...map[string]any) *Error {
	return newError(http.StatusBadRequest, msg, extra...)
}

// Unauthorized builds a 401 failure for ownership or credential mismatches.
func Unauthorized(msg string, extra ...map[string]any) *Error {
	return newError(http.StatusUnauthorized, msg, extra...)
}

// NotFound builds a 404 failure for absent entities.
func NotFound(msg string, extra ...map[string]any) *Error {
	return newError(http.StatusNotFound, msg, extra...)
}

// Conflict builds a 409 failure for uniqueness violations.
func Conflict(msg string, extra ...map[string]any) *Error {
	return newError(http.StatusConflict, msg, extra...)
}

// From extracts the typed failure from err. Anything that is not an
// *Error classifies as 500 with the generic message.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: GenericMessage,
		Stack:   debug.Stack(),
	}
}

// PublicMessage returns the message the caller may see: the original one
// for 4xx classes, the generic string for anything internal.
func (e *Error) PublicMessage() string {
	if e.Status == http.StatusInternalServerError {
		return GenericMessage
	}
	return e.Message
}
