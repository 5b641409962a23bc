package errors

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError represents an HTTP 429 from the review site.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// NewRateLimitError creates a new RateLimitError with the given message
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// NewRateLimitErrorWithRetry creates a RateLimitError carrying the server's Retry-After hint.
func NewRateLimitErrorWithRetry(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Message: message, RetryAfter: retryAfter}
}

// IsRateLimitError reports whether err is a RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
