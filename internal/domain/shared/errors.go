// Package shared contains common domain types and errors that are used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Model availability errors
	ErrModelUnavailable    = errors.New("model unavailable")
	ErrEncodingUnavailable = errors.New("encoding tables unavailable")

	// Degradation errors. Operations that hit these never fail the
	// assessment; the pipeline substitutes a documented fallback.
	ErrAttributionFailed = errors.New("attribution failed")
	ErrAdviceFailed      = errors.New("advice generation failed")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")

	// Persistence errors
	ErrNotFound = errors.New("entity not found")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "prediction", "advice"
	Op      string // Operation that failed, e.g., "Validate", "Classify"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentFieldMissing = NewDomainError("student", "Validate", ErrMissingField, "required field is missing")
	ErrStudentFieldRange   = NewDomainError("student", "Validate", ErrValueOutOfRange, "field value out of allowed range")
	ErrStudentFieldFormat  = NewDomainError("student", "Validate", ErrInvalidFormat, "field value has invalid format")
)

// Prediction domain errors
var (
	ErrClassifierNotLoaded = NewDomainError("prediction", "Classify", ErrModelUnavailable, "classifier artifact is not loaded")
	ErrEncodersNotLoaded   = NewDomainError("prediction", "Encode", ErrEncodingUnavailable, "encoding tables are not loaded")
	ErrUnknownRiskLabel    = NewDomainError("prediction", "Classify", ErrInvalidFormat, "classifier returned unknown risk label")
	ErrAttributionShape    = NewDomainError("prediction", "Explain", ErrAttributionFailed, "unrecognized attribution output shape")
)

// Advice domain errors
var (
	ErrAdviceEmpty       = NewDomainError("advice", "Generate", ErrAdviceFailed, "text generator returned empty advice")
	ErrAdviceTimeout     = NewDomainError("advice", "Generate", ErrTimeout, "advice generation timed out")
	ErrAdviceUnavailable = NewDomainError("advice", "Generate", ErrServiceUnavailable, "text generator is unavailable")
	ErrPromptTooLong     = NewDomainError("advice", "Validate", ErrValueOutOfRange, "custom prompt exceeds maximum length")
)

// External service errors
var (
	ErrAlertDeliveryFailed = NewDomainError("alert", "Send", ErrExternalService, "faculty alert delivery failed")
)

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsModelUnavailable checks if the error indicates missing model artifacts.
func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, ErrEncodingUnavailable)
}

// IsDegradation checks if the error belongs to a degradable pipeline stage.
// Degradation errors are absorbed by fallbacks and never surface to callers.
func IsDegradation(err error) bool {
	return errors.Is(err, ErrAttributionFailed) ||
		errors.Is(err, ErrAdviceFailed)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
