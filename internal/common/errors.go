package common

import (
	"errors"
	"fmt"
)

// Error codes for AppError. Input errors are terminal and never retried;
// engine errors are retried by the OCR pool before being surfaced.
const (
	CodeInput  = "INPUT"
	CodeEngine = "ENGINE"
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

// NewInputError builds a terminal input failure (missing file, bad PDF
// signature, no extractable text).
func NewInputError(message string, cause error) *AppError {
	return &AppError{Code: CodeInput, Message: message, Cause: cause}
}

// NewEngineError builds a retryable OCR engine failure.
func NewEngineError(message string, cause error) *AppError {
	return &AppError{Code: CodeEngine, Message: message, Cause: cause}
}

// IsInputError reports whether err carries the terminal input code.
func IsInputError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == CodeInput
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
