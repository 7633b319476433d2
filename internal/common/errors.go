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

// Common application errors
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrAcquisition       = errors.New("text acquisition failed")
	ErrStoreIO           = errors.New("store I/O error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("resource not found")
)

// Acquisition error causes, reported in per-document outcomes.
const (
	CauseIO         = "io"
	CauseDecode     = "decode"
	CauseOCRTimeout = "ocr-timeout"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAcquisitionError tags a failed acquisition with its cause kind
// (io | decode | ocr-timeout).
func NewAcquisitionError(cause string, err error) *AppError {
	return &AppError{
		Code:    "ACQUISITION_ERROR",
		Message: cause,
		Cause:   fmt.Errorf("%w: %w", ErrAcquisition, err),
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
