// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypePersistence      ErrorType = "PERSISTENCE"
	ErrTypeNotAuthenticated ErrorType = "NOT_AUTHENTICATED"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	Field     string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, field, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Field: field, Message: msg}
}

func NewPersistenceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}

func NewNotAuthenticatedError(operation string, cause error) *ChatError {
	return &ChatError{
		Type:      ErrTypeNotAuthenticated,
		Operation: operation,
		Message:   "no resolvable identity",
		Cause:     cause,
	}
}

func IsValidation(err error) bool {
	return hasType(err, ErrTypeValidation)
}

func IsPersistence(err error) bool {
	return hasType(err, ErrTypePersistence)
}

func IsNotAuthenticated(err error) bool {
	return hasType(err, ErrTypeNotAuthenticated)
}

func hasType(err error, t ErrorType) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == t
}
