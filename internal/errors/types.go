package errors

import (
	"fmt"
)

// Kind is the category of an application error.
type Kind int

const (
	KindIndexOutOfRange Kind = iota
	KindEmptyInput
	KindPersistenceUnavailable
	KindMalformedSnapshot
	KindNotLoggedIn
	KindConfig
	KindInvalidInput
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindIndexOutOfRange:
		return "index_out_of_range"
	case KindEmptyInput:
		return "empty_input"
	case KindPersistenceUnavailable:
		return "persistence_unavailable"
	case KindMalformedSnapshot:
		return "malformed_snapshot"
	case KindNotLoggedIn:
		return "not_logged_in"
	case KindConfig:
		return "config"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// AppError is a structured application error.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any *AppError of the same kind, so a bare &AppError{Kind: k}
// works as an errors.Is target.
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Kind == appErr.Kind
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext retrieves context information from the error
func (e *AppError) GetContext(key string) (interface{}, bool) {
	if e.Context == nil {
		return nil, false
	}
	value, exists := e.Context[key]
	return value, exists
}
