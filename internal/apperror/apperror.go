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
	Err     error  // sentinel category, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no record exists at the given positional index.
func NotFound(resource string, index int) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found at index %d", resource, index),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Storage wraps a persistence failure. The in-memory mutation has been
// rolled back by the time one of these reaches a caller.
func Storage(op string, err error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: fmt.Sprintf("failed to %s: %v", op, err),
	}
}
