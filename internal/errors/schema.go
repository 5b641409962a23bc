package errors

import (
	"errors"
	"fmt"
)

// UnknownTestBenchError is raised when a product carries a test bench tag
// that has no field map.
type UnknownTestBenchError struct {
	Tag string
}

func (e *UnknownTestBenchError) Error() string {
	return fmt.Sprintf("unknown test bench version: %q", e.Tag)
}

// NewUnknownTestBenchError creates an UnknownTestBenchError for tag.
func NewUnknownTestBenchError(tag string) *UnknownTestBenchError {
	return &UnknownTestBenchError{Tag: tag}
}

// IsUnknownTestBenchError reports whether err is an UnknownTestBenchError.
func IsUnknownTestBenchError(err error) bool {
	var tbErr *UnknownTestBenchError
	return errors.As(err, &tbErr)
}

// MissingFieldError marks a response that lacks a field the pipeline needs.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("response is missing %s", e.Path)
}

// NewMissingFieldError creates a MissingFieldError for the dotted path.
func NewMissingFieldError(path string) *MissingFieldError {
	return &MissingFieldError{Path: path}
}

// IsMissingFieldError reports whether err is a MissingFieldError.
func IsMissingFieldError(err error) bool {
	var mfErr *MissingFieldError
	return errors.As(err, &mfErr)
}
