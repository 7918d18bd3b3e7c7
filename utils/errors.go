package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies application errors for the UI: validation problems
// are recoverable by editing, credential problems need reconfiguration,
// transport problems are retryable.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindCredentials ErrorKind = "credentials"
	KindTransport   ErrorKind = "transport"
	KindImport      ErrorKind = "import"
	KindGeneric     ErrorKind = "generic"
)

// AppError represents a custom application error with context
type AppError struct {
	Code    int                    // HTTP status code
	Kind    ErrorKind              // Error classification
	Message string                 // User-friendly message
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(code int, kind ErrorKind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Common error constructors
func BadRequestError(message string, err error) *AppError {
	return NewAppError(400, KindGeneric, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(401, KindGeneric, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(404, KindGeneric, message, err)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(500, KindGeneric, message, err)
}

// ValidationError marks input the user can fix and retry; it is raised
// before any network call is made.
func ValidationError(message string) *AppError {
	return NewAppError(400, KindValidation, message, nil)
}

// CredentialsError means neither session nor fallback relay credentials are
// usable; not retryable without reconfiguration.
func CredentialsError(message string, err error) *AppError {
	return NewAppError(500, KindCredentials, message, err)
}

// TransportError carries the relay's message text for a rejected send;
// the user may retry the same prospect.
func TransportError(message string, err error) *AppError {
	return NewAppError(502, KindTransport, message, err)
}

// MalformedImportError aborts a prospect import entirely; no partial state
// change takes place.
func MalformedImportError(message string, err error) *AppError {
	return NewAppError(400, KindImport, message, err)
}

// KindOf returns the classification of an error, KindGeneric for anything
// that is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindGeneric
}
