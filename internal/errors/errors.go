package errors

import (
	"errors"
	"fmt"
)

// NewIndexOutOfRange reports an index outside [0, length).
func NewIndexOutOfRange(op string, index, length int) *AppError {
	return &AppError{
		Kind:    KindIndexOutOfRange,
		Message: fmt.Sprintf("%s: index %d out of range [0, %d)", op, index, length),
		Context: map[string]interface{}{
			"operation": op,
			"index":     index,
			"length":    length,
		},
	}
}

// NewEmptyInput reports a required field that is blank after trimming.
func NewEmptyInput(field string) *AppError {
	return &AppError{
		Kind:    KindEmptyInput,
		Message: fmt.Sprintf("%s cannot be empty", field),
		Context: map[string]interface{}{
			"field": field,
		},
	}
}

// NewInvalidInput reports a field whose value cannot be stored as given.
func NewInvalidInput(field, reason string) *AppError {
	return &AppError{
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf("%s is %s", field, reason),
		Context: map[string]interface{}{
			"field": field,
		},
	}
}

// NewPersistenceUnavailable wraps a durable storage failure.
func NewPersistenceUnavailable(op string, cause error) *AppError {
	return &AppError{
		Kind:    KindPersistenceUnavailable,
		Message: fmt.Sprintf("storage %s failed", op),
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": op,
		},
	}
}

// NewMalformedSnapshot wraps a stored snapshot that could not be decoded.
func NewMalformedSnapshot(key string, cause error) *AppError {
	return &AppError{
		Kind:    KindMalformedSnapshot,
		Message: fmt.Sprintf("stored value for %q is not a valid todo list", key),
		Cause:   cause,
		Context: map[string]interface{}{
			"key": key,
		},
	}
}

// NewNotLoggedIn reports a command that needs a session.
func NewNotLoggedIn() *AppError {
	return &AppError{
		Kind:    KindNotLoggedIn,
		Message: "not logged in",
	}
}

// NewConfigError wraps a configuration problem.
func NewConfigError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindConfig,
		Message: message,
		Cause:   cause,
	}
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind checks if the error chain holds an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind == kind
	}
	return false
}

// IsCallerError reports whether err is a contract violation by the caller
// (bad index, blank input, missing session) rather than an environment failure.
func IsCallerError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Kind {
		case KindIndexOutOfRange, KindEmptyInput, KindInvalidInput, KindNotLoggedIn:
			return true
		}
	}
	return false
}

// UserMessage returns a message suitable for the terminal.
func UserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Kind {
		case KindIndexOutOfRange, KindEmptyInput, KindInvalidInput, KindConfig:
			return appErr.Message
		case KindNotLoggedIn:
			return "not logged in. Run: todo login"
		case KindPersistenceUnavailable:
			return "storage is unavailable; changes are kept in memory only"
		case KindMalformedSnapshot:
			return "saved todos could not be read; starting with an empty list"
		default:
			return "an unexpected error occurred"
		}
	}
	return err.Error()
}

// CommandMessage is UserMessage for one-shot commands: the process exits
// right after, so an unsaved change is lost rather than kept in memory.
func CommandMessage(err error) string {
	if IsKind(err, KindPersistenceUnavailable) {
		return "storage is unavailable; the change was not saved"
	}
	return UserMessage(err)
}
