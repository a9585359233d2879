package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates a uniqueness or concurrency conflict, such as a duplicate
// entry reference or two writers racing on the same entry.
var ErrConflict = errors.New("conflict")

// ErrStateTransition indicates an illegal journal entry state transition, such as
// mutating or deleting a posted entry.
var ErrStateTransition = errors.New("illegal state transition")

// ErrStorage indicates a storage-layer fault (transaction or connectivity failure).
// The enclosing operation has been rolled back; nothing was partially committed.
var ErrStorage = errors.New("storage fault")

// ErrForbidden indicates the acting user lacks the role required for the operation.
var ErrForbidden = errors.New("forbidden")

// AppError wraps an underlying error with an application-level code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStorageError wraps a storage-layer failure so callers can match ErrStorage.
func NewStorageError(message string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, message, err)
}

// NewNotFoundError creates an error that matches ErrNotFound with extra context.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}
