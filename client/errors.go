package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAuthenticationExpired is returned for a 401; the session has already been cleared
var ErrAuthenticationExpired = errors.New("authentication expired")

// DefaultForbiddenMessage is shown when a 403 body carries no message
const DefaultForbiddenMessage = "Access restricted by treasury."

// ForbiddenError is returned for a 403; the session is kept
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Message
}

// DefaultCredentialsMessage is shown when a rejected login carries no message
const DefaultCredentialsMessage = "Error de credenciales"

// CredentialsError is returned when the backend rejects a login
type CredentialsError struct {
	StatusCode int
	Message    string
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("credentials rejected (%d): %s", e.StatusCode, e.Message)
}

// ValidationError is returned for 400 and 422 responses
type ValidationError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// APIError is any other non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport failure
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsForbidden reports whether err is a 403
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

// IsCredentials reports whether err is a rejected login
func IsCredentials(err error) bool {
	var ce *CredentialsError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a 400/422
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// UserMessage converts err to a short message suitable for the terminal
func UserMessage(err error) string {
	var (
		fe *ForbiddenError
		ce *CredentialsError
		ve *ValidationError
		ae *APIError
		ne *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthenticationExpired):
		return "Your session has expired. Please log in again."
	case errors.As(err, &fe):
		return fe.Message
	case errors.As(err, &ce):
		if ce.Message != "" {
			return ce.Message
		}
		return DefaultCredentialsMessage
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ae):
		if ae.Message != "" {
			return ae.Message
		}
		return fmt.Sprintf("The server answered with status %d.", ae.StatusCode)
	case errors.As(err, &ne):
		return "Could not reach the server. Check your connection."
	}
	return err.Error()
}
