package errors

import (
	"errors"
	"fmt"
)

// HTTPStatusError is returned when a remote endpoint answers with a non-2xx status.
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.StatusCode)
}

// NewHTTPStatusError builds an HTTPStatusError with a message describing the status.
func NewHTTPStatusError(op string, statusCode int) *HTTPStatusError {
	var message string
	switch {
	case statusCode == 401 || statusCode == 403:
		message = "session token rejected or expired"
	case statusCode == 404:
		message = "resource not found"
	case statusCode >= 500:
		message = "server error"
	default:
		message = "unexpected status"
	}

	return &HTTPStatusError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsHTTPStatusError checks if err is an HTTPStatusError
func IsHTTPStatusError(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr)
}
