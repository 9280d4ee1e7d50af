package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a job id is unknown.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidTransition is returned when a terminal job is mutated again.
	// Callers treat it as a broken invariant, not a recoverable condition.
	ErrInvalidTransition = errors.New("invalid job transition")
)

// UploadTip is shown with every rejected upload.
const UploadTip = "Make sure file is a video (MP4, MOV, etc.) under 200MB"

// ValidationError describes a rejected upload.
type ValidationError struct {
	Status  int
	Message string
	Details string
	Tip     string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// NewValidationError builds a 400 validation error with the default tip.
func NewValidationError(message, details string) *ValidationError {
	return &ValidationError{
		Status:  http.StatusBadRequest,
		Message: message,
		Details: details,
		Tip:     UploadTip,
	}
}

// GenerationError wraps a failure of the tutorial generator.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err with a short reason.
func NewGenerationError(reason string, err error) *GenerationError {
	return &GenerationError{Reason: reason, Err: err}
}
