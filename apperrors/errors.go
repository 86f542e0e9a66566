package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the failure category reported to callers.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindInvalidTransition
	KindInvalidState
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalidState:
		return "invalid_state"
	case KindDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// AppError is the error type returned by services.
type AppError struct {
	Kind    Kind
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of its message.
func (e *AppError) Is(target error) bool {
	if other, ok := target.(*AppError); ok {
		return e.Kind == other.Kind
	}
	return false
}

// WithContext adds a key/value pair to the error context.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Kind sentinels for use with errors.Is.
var (
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrInvalidTransition = &AppError{Kind: KindInvalidTransition}
	ErrInvalidState      = &AppError{Kind: KindInvalidState}
	ErrDatabase          = &AppError{Kind: KindDatabase}
)

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Code: "VALIDATION_FAILED"}
}

func NewNotFoundError(resource, identifier string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: message, Code: "INVALID_TRANSITION"}
}

func NewInvalidStateError(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message, Code: "INVALID_STATE"}
}

// NewDatabaseError wraps a store failure for the named operation.
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Kind:    KindDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// AsAppError extracts an *AppError from the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err. Errors that are not AppErrors are treated
// as database failures.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindDatabase
}
