// Package apperror defines the error kinds shared by the service layer, the
// HTTP handlers and the client state store.
//
// Every failure the API can report falls into one of three kinds:
//
//	ErrValidation → 400 (a required field is missing or malformed)
//	ErrNotFound   → 404 (no record with the given id)
//	ErrStorage    → 500 (the repository is unreachable or the query failed)
//
// Callers test the kind with errors.Is and read the human-readable text
// with errors.As(err, &*AppError).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver/transport error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel kind and the underlying cause so that
// errors.Is matches either of them.
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

// Storage wraps a repository failure. The message is what the client sees;
// the cause is kept for logging only.
func Storage(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: message,
		Cause:   cause,
	}
}

// Message returns the human-readable text of err: the AppError message when
// one is in the chain, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
