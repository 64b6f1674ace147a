// Package apierr defines the typed errors handlers raise and the dispatcher
// maps onto HTTP problem responses. Anything that is not one of these kinds
// is treated as internal and never leaks its detail to the client.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into its HTTP-facing category.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Title returns the human-readable summary used as the problem title.
func (k Kind) Title() string {
	return http.StatusText(k.Status())
}

// Violation reports one field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed API error. Detail is client-visible; the wrapped cause
// is for logs only.
type Error struct {
	Kind       Kind
	Detail     string
	Violations []Violation
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Title(), e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Title(), e.Detail)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code of the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Wrap attaches a cause and returns the error for chaining.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// Validation reports malformed or invalid input with optional field-level
// violations.
func Validation(detail string, violations ...Violation) *Error {
	return &Error{Kind: KindValidation, Detail: detail, Violations: violations}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(detail string) *Error {
	return &Error{Kind: KindUnauthorized, Detail: detail}
}

// Forbidden reports an authenticated caller lacking privilege.
func Forbidden(detail string) *Error {
	return &Error{Kind: KindForbidden, Detail: detail}
}

// NotFound reports a missing route or resource.
func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

// Conflict reports a resource state conflict.
func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Detail: detail}
}

// Unprocessable reports a business-rule violation.
func Unprocessable(detail string) *Error {
	return &Error{Kind: KindUnprocessable, Detail: detail}
}

// Internal reports an unexpected failure. Detail is still client-visible;
// use Classify for arbitrary errors that must not leak.
func Internal(detail string) *Error {
	return &Error{Kind: KindInternal, Detail: detail}
}

// Classify resolves an arbitrary error to a typed API error. Typed errors
// pass through unchanged; everything else becomes an internal error with a
// generic client-facing detail and the original error retained as cause.
func Classify(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{
		Kind:   KindInternal,
		Detail: "an unexpected error occurred",
		cause:  err,
	}
}
