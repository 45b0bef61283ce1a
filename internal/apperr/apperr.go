// Package apperr defines the error taxonomy surfaced to API clients.
//
// Domain and authorization errors are created where they are detected and travel
// unmodified to the HTTP boundary, which maps Kind to a status code. Anything that
// is not an *Error is reported as InternalFailure without exposing its message.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	InternalFailure Kind = iota
	AuthenticationMissing
	AuthenticationInvalid
	TokenMalformed
	AuthorizationDenied
	EntityNotFound
	ValidationFailed
	ConflictState
	CapacityExceeded
	TooManyRequests
)

var statuses = map[Kind]int{
	InternalFailure:       http.StatusInternalServerError,
	AuthenticationMissing: http.StatusUnauthorized,
	AuthenticationInvalid: http.StatusUnauthorized,
	TokenMalformed:        http.StatusBadRequest,
	AuthorizationDenied:   http.StatusForbidden,
	EntityNotFound:        http.StatusNotFound,
	ValidationFailed:      http.StatusBadRequest,
	ConflictState:         http.StatusConflict,
	CapacityExceeded:      http.StatusBadRequest,
	TooManyRequests:       http.StatusTooManyRequests,
}

// Error is a classified failure. FieldErrors is only set for ValidationFailed.
type Error struct {
	Kind        Kind
	Message     string
	FieldErrors map[string]string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	if s, ok := statuses[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Unauthenticated(msg string) *Error { return New(AuthenticationMissing, msg) }
func InvalidToken(msg string) *Error    { return New(AuthenticationInvalid, msg) }
func Forbidden(msg string) *Error       { return New(AuthorizationDenied, msg) }
func NotFound(msg string) *Error        { return New(EntityNotFound, msg) }
func Conflict(msg string) *Error        { return New(ConflictState, msg) }
func Capacity(msg string) *Error        { return New(CapacityExceeded, msg) }

// Validation builds a ValidationFailed error with optional per-field messages.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: ValidationFailed, Message: msg, FieldErrors: fields}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: InternalFailure, Message: "internal server error", Err: err}
}

// From returns the *Error in err's chain, or classifies err as InternalFailure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
