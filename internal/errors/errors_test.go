package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("fetch detail page: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry_VariousDurations(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		expectedMessage string
	}{
		{
			name:            "zero",
			duration:        0,
			expectedMessage: "rate limited",
		},
		{
			name:            "30 seconds",
			duration:        30 * time.Second,
			expectedMessage: "rate limited (retry after 30s)",
		},
		{
			name:            "2 minutes",
			duration:        2 * time.Minute,
			expectedMessage: "rate limited (retry after 2m0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("rate limited", tt.duration)
			if err.Error() != tt.expectedMessage {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expectedMessage)
			}
			if err.RetryAfter != tt.duration {
				t.Fatalf("RetryAfter = %v, want %v", err.RetryAfter, tt.duration)
			}
		})
	}
}

func TestHTTPStatusError_Messages(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{401, "session token rejected or expired"},
		{403, "session token rejected or expired"},
		{404, "resource not found"},
		{502, "server error"},
		{418, "unexpected status"},
	}

	for _, tt := range tests {
		err := NewHTTPStatusError("fetch catalog", tt.status)
		if err.Message != tt.message {
			t.Fatalf("status %d: Message = %q, want %q", tt.status, err.Message, tt.message)
		}
		want := fmt.Sprintf("fetch catalog: %s (HTTP %d)", tt.message, tt.status)
		if err.Error() != want {
			t.Fatalf("status %d: Error() = %q, want %q", tt.status, err.Error(), want)
		}
	}
}

func TestHTTPStatusError_Wrapped(t *testing.T) {
	err := fmt.Errorf("product p1: %w", NewHTTPStatusError("resolve graph url", 500))
	if !IsHTTPStatusError(err) {
		t.Fatalf("IsHTTPStatusError returned false for wrapped HTTPStatusError")
	}
	if IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned true for HTTPStatusError")
	}
}

func TestUnknownTestBenchError(t *testing.T) {
	err := NewUnknownTestBenchError("v2.0")

	if err.Error() != `unknown test bench version: "v2.0"` {
		t.Fatalf("Error message = %q", err.Error())
	}
	if !IsUnknownTestBenchError(fmt.Errorf("parse: %w", err)) {
		t.Fatalf("IsUnknownTestBenchError returned false for wrapped error")
	}
}

func TestMissingFieldError(t *testing.T) {
	err := NewMissingFieldError("data.product.review.test_results[0]")

	if err.Error() != "response is missing data.product.review.test_results[0]" {
		t.Fatalf("Error message = %q", err.Error())
	}
	if !IsMissingFieldError(stdErrors.Join(err, stdErrors.New("context"))) {
		t.Fatalf("IsMissingFieldError returned false for joined error")
	}
}
