package service

import (
	"errors"
	"fmt"
)

// Shared service errors. The API layer maps these to HTTP status codes;
// callers check for them with errors.Is.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. Maps to 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidInput indicates a request failed validation before any
	// storage access. Maps to 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")
)

// ServiceError wraps an unexpected failure with the service and operation it
// happened in. Expected conditions are returned as sentinels instead.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	prefix := fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
	if e.Service == "" {
		prefix = fmt.Sprintf("%s operation failed", e.Operation)
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return prefix
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
