package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy. Field-level failures (not-found, malformed) are absorbed
// where they occur; document-level failures travel as a classified terminal
// state on the record, never as a raised error.
var (
	ErrNotFound     = errors.New("nothing extracted")
	ErrMalformed    = errors.New("value failed normalization")
	ErrEngineFail   = errors.New("decode engine failure")
	ErrTimeout      = errors.New("decode budget exceeded")
	ErrPermanent    = errors.New("document unreadable")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
