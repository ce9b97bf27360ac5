// Package apperror defines the error kinds shared by every layer.
//
// Repositories and services never panic or leak raw driver errors past their
// boundary: they return an *AppError whose Err is one of the sentinels below.
// Only the HTTP layer turns a kind into a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage unavailable")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: lower-level error, never shown to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that field already belongs to another resource. field may
// be empty when the store could not say which constraint fired.
func Conflict(resource, field string) *AppError {
	msg := fmt.Sprintf("%s already exists", resource)
	if field != "" {
		msg = fmt.Sprintf("%s with this %s already exists", resource, field)
	}
	return &AppError{
		Err:     ErrConflict,
		Message: msg,
		Field:   field,
	}
}

// Unauthorized returns an AppError for failed credentials or tokens.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Storage wraps a driver or transaction failure. The cause is kept for logs
// and errors.Is, the message stays generic.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: "storage: " + op,
		Cause:   cause,
	}
}

// Kind returns the sentinel carried by err, or nil when err is not an
// *AppError.
func Kind(err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return nil
	}
	return appErr.Err
}
