package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is raised before any backend call is made.
type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// BackendError is a non-2xx answer from the backend service.
type BackendError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

func NewBackendError(statusCode int, message, body string) *BackendError {
	return &BackendError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

func IsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// BackendMessage returns the backend-provided message carried by err, if any.
func BackendMessage(err error) string {
	if be, ok := IsBackendError(err); ok {
		return be.Message
	}
	return ""
}

// TransportError covers failures to reach the backend or to decode its answer.
type TransportError struct {
	Op    string
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Op, e.URL)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

func NewTransportError(op, url string, cause error) *TransportError {
	return &TransportError{
		Op:    op,
		URL:   url,
		Cause: cause,
	}
}
