// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies application errors
type ErrorType string

const (
	// ErrorTypeValidation marks local precondition failures caught before
	// any network call (empty selection, blank prompt fields)
	ErrorTypeValidation ErrorType = "validation_error"
	// ErrorTypeTransport marks failed exchanges with the generation backend
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeParse marks response bodies that could not be decoded
	ErrorTypeParse ErrorType = "parse_error"
	// ErrorTypeNotFound marks lookups of unknown sessions or documents
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict marks operations rejected because another one is
	// already in flight
	ErrorTypeConflict ErrorType = "conflict"
)

// AppError carries a classified error through the service layers
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped error for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error
func NewValidation(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewTransport creates a transport error
func NewTransport(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeTransport, Message: message, Err: err}
}

// NewParse creates a parse error
func NewParse(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParse, Message: message, Err: err}
}

// NewNotFound creates a not-found error
func NewNotFound(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// TypeOf returns the classified type of err, or ErrorTypeTransport when the
// error carries no classification
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeTransport
}

// HTTPStatus maps an error to the status code the API layer should answer with
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeParse:
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
