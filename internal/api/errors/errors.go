// Package errors is the error shape returned by the JSON API outside the
// transcribe endpoint, whose bodies are fixed by the bridge protocol.
package errors

import (
	"net/http"
)

// ErrorKind classifies an APIError and decides its status code.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindBadRequest         ErrorKind = "bad_request"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
)

var statusByKind = map[ErrorKind]int{
	KindValidation:         http.StatusUnprocessableEntity,
	KindBadRequest:         http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindInternal:           http.StatusInternalServerError,
	KindServiceUnavailable: http.StatusServiceUnavailable,
}

// APIError is rendered as the JSON body of a failed request.
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`

	cause error
}

func (e *APIError) Error() string { return e.Message }

// Unwrap exposes the error WrapError was given. It is never serialized.
func (e *APIError) Unwrap() error { return e.cause }

// HTTPStatus maps the kind to a status; unknown kinds are 500.
func (e *APIError) HTTPStatus() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(kind ErrorKind, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// NewValidationError reports invalid input field by field.
func NewValidationError(message string, fields map[string]string) *APIError {
	e := newError(KindValidation, message)
	e.Details = fields
	return e
}

func NewBadRequestError(message string) *APIError { return newError(KindBadRequest, message) }

func NewNotFoundError(message string) *APIError { return newError(KindNotFound, message) }

func NewInternalError(message string) *APIError { return newError(KindInternal, message) }

func NewServiceUnavailableError(message string) *APIError {
	return newError(KindServiceUnavailable, message)
}

// WrapError hides err behind a client-safe message. Details of a wrapped
// APIError carry over; anything else stays server side.
func WrapError(err error, kind ErrorKind, message string) *APIError {
	if err == nil {
		return nil
	}
	e := newError(kind, message)
	e.cause = err
	if inner, ok := err.(*APIError); ok {
		e.Details = inner.Details
	}
	return e
}
