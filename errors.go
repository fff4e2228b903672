package todo

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeStorageFailure = "STORAGE_FAILURE"
	ErrCodeInvalidInput   = "INVALID_INPUT"
)

// ErrNotFound is matched by every not-found error returned from a TodoStore
var ErrNotFound = errors.New("todo item not found")

// StoreError represents a failed storage operation
type StoreError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ItemID  string `json:"itemId,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("[%s] %s (item: %s)", e.Code, e.Message, e.ItemID)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates the error a store returns when id has no item
func NewNotFoundError(id string) *StoreError {
	return &StoreError{
		Code:    ErrCodeNotFound,
		Message: "todo item not found",
		ItemID:  id,
		Err:     ErrNotFound,
	}
}

// NewStorageError wraps a backend failure
func NewStorageError(operation string, err error) *StoreError {
	return &StoreError{
		Code:    ErrCodeStorageFailure,
		Message: fmt.Sprintf("failed to %s", operation),
		Err:     err,
	}
}

// NewInvalidInputError creates an error for a request that could not be decoded
func NewInvalidInputError(message string) *StoreError {
	return &StoreError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// IsNotFound checks if an error reports a missing item
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if an error reports malformed input
func IsInvalidInput(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidInput
	}
	return false
}
