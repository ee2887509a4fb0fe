package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeValueCoercion is soft: the original cell value is kept
	ErrTypeValueCoercion ErrorType = "VALUE_COERCION"
	// ErrTypeLookupMiss is informational: the channel default is written instead
	ErrTypeLookupMiss ErrorType = "LOOKUP_MISS"
	// ErrTypeSortKey aborts the run
	ErrTypeSortKey ErrorType = "SORT_KEY"
	// ErrTypeSourceNotFound aborts the run before any mutation
	ErrTypeSourceNotFound ErrorType = "SOURCE_NOT_FOUND"
	// ErrTypeDeletionIndex signals an internal invariant violation
	ErrTypeDeletionIndex ErrorType = "DELETION_INDEX"

	ErrTypeUnsupported ErrorType = "UNSUPPORTED"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsFatal reports whether the error must stop a macro run
func (e *AppError) IsFatal() bool {
	switch e.Type {
	case ErrTypeValueCoercion, ErrTypeLookupMiss:
		return false
	}
	return true
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValueCoercionError reports a cell that could not be read as the expected type
func NewValueCoercionError(cell string, value interface{}, cause error) *AppError {
	return NewAppError(ErrTypeValueCoercion, fmt.Sprintf("cannot coerce %s", cell), cause).
		WithContext("cell", cell).
		WithContext("value", value)
}

// NewLookupMiss records a key that had no entry in the lookup table
func NewLookupMiss(key string) *AppError {
	return NewAppError(ErrTypeLookupMiss, fmt.Sprintf("lookup key %q not found", key), nil).
		WithContext("key", key)
}

// NewSortKeyError reports an incomparable sort key with its row context
func NewSortKeyError(row int, column string, cause error) *AppError {
	return NewAppError(ErrTypeSortKey, fmt.Sprintf("invalid sort key at row %d column %s", row, column), cause).
		WithContext("row", row).
		WithContext("column", column)
}

// NewSourceNotFoundError reports a missing input file or sheet
func NewSourceNotFoundError(source string, cause error) *AppError {
	return NewAppError(ErrTypeSourceNotFound, fmt.Sprintf("%s not found", source), cause).
		WithContext("source", source)
}

// NewDeletionIndexError reports row deletions that were not applied highest index first
func NewDeletionIndexError(index, previous int) *AppError {
	return NewAppError(ErrTypeDeletionIndex,
		fmt.Sprintf("row %d deleted after row %d", index, previous), nil).
		WithContext("index", index).
		WithContext("previous", previous)
}

// NewUnsupportedFormatError reports an input extension the loader cannot read
func NewUnsupportedFormatError(ext string) *AppError {
	return NewAppError(ErrTypeUnsupported, fmt.Sprintf("unsupported file format %q", ext), nil).
		WithContext("extension", ext)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in the chain
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Is reports whether err carries an AppError of the given type
func Is(err error, t ErrorType) bool {
	return TypeOf(err) == t
}
