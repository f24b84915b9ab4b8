// Package apperr defines the error taxonomy shared by services, middleware
// and HTTP handlers. Every error that reaches a client is an *Error carrying
// one of a fixed set of machine codes.
package apperr

import (
	"errors"
	"net/http"
)

// Code is the machine-readable error code sent to clients.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
)

// HTTPStatus returns the HTTP status code for c.
// Unknown codes map to 500.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified application error.
type Error struct {
	// Code is the machine code exposed to the client.
	Code Code
	// Message is the human-readable reason exposed to the client.
	Message string
	// Details lists per-field validation failures, if any.
	Details []FieldError
	// Err is the underlying cause. It is logged, never sent to the client.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input.
func Validation(message string, details ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// NotFound reports an absent record, or one the caller does not own.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string, cause error) *Error {
	return &Error{Code: CodeConflict, Message: message, Err: cause}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(message string, cause error) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, Err: cause}
}

// Forbidden reports an authenticated caller without the required privilege.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// Internal wraps an unexpected failure. The client only sees a generic message.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "Internal server error", Err: cause}
}

// As extracts an *Error from err. Errors that are not classified are
// reported as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// CodeOf returns the code of err, or CodeInternal when err is unclassified.
func CodeOf(err error) Code {
	return As(err).Code
}
