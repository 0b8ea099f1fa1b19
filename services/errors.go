package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeUnauthenticated     ErrorType = "unauthenticated"
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable"
	ErrorTypeUpstream            ErrorType = "upstream_error"
	ErrorTypeInternal            ErrorType = "internal"
)

// Machine-readable codes carried in error bodies
const (
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeValidation            = "VALIDATION_FAILED"
	CodeUpstreamNotConfigured = "UPSTREAM_NOT_CONFIGURED"
	CodeUpstreamError         = "UPSTREAM_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
)

var defaultCodes = map[ErrorType]string{
	ErrorTypeUnauthenticated:     CodeUnauthenticated,
	ErrorTypeValidation:          CodeValidation,
	ErrorTypeUpstreamUnavailable: CodeUpstreamNotConfigured,
	ErrorTypeUpstream:            CodeUpstreamError,
	ErrorTypeInternal:            CodeInternal,
}

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error with the type's default code
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Code:    defaultCodes[errType],
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	ErrMissingCredential = NewDomainError(ErrorTypeUnauthenticated, "missing authorization credential", nil)
	ErrInvalidCredential = NewDomainError(ErrorTypeUnauthenticated, "invalid authorization credential", nil)

	ErrUpstreamNotConfigured = NewDomainError(ErrorTypeUpstreamUnavailable, "assistant is not configured", nil)
)

// Error type checking helper functions

// IsUnauthenticatedError checks if an error is an authentication failure
func IsUnauthenticatedError(err error) bool {
	return hasType(err, ErrorTypeUnauthenticated)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsUpstreamUnavailableError checks if the completion provider is not configured
func IsUpstreamUnavailableError(err error) bool {
	return hasType(err, ErrorTypeUpstreamUnavailable)
}

// IsUpstreamError checks if the completion provider answered with a failure
func IsUpstreamError(err error) bool {
	return hasType(err, ErrorTypeUpstream)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

func hasType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorCode returns the code of a domain error, or CodeInternal
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code
	}
	return CodeInternal
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapUpstream wraps a provider failure, keeping the provider's message
func WrapUpstream(message string, err error) error {
	return NewDomainError(ErrorTypeUpstream, message, err)
}
