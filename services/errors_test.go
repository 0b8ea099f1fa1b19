package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("error message with wrapped error", func(t *testing.T) {
		err := NewDomainError(ErrorTypeInternal, "query failed", errors.New("conn reset"))
		assert.Equal(t, "internal: query failed (conn reset)", err.Error())
		assert.Equal(t, CodeInternal, err.Code)
	})

	t.Run("is matches on type", func(t *testing.T) {
		err := NewDomainError(ErrorTypeUnauthenticated, "token expired", nil)
		assert.True(t, errors.Is(err, ErrInvalidCredential))
		assert.False(t, errors.Is(err, ErrUpstreamNotConfigured))
	})

	t.Run("with detail", func(t *testing.T) {
		err := NewDomainError(ErrorTypeValidation, "bad body", nil).WithDetail("message", "required")
		assert.Equal(t, "required", GetErrorDetails(err)["message"])
	})
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		code  string
	}{
		{"unauthenticated", ErrMissingCredential, IsUnauthenticatedError, CodeUnauthenticated},
		{"validation", NewDomainError(ErrorTypeValidation, "bad body", nil), IsValidationError, CodeValidation},
		{"upstream unavailable", ErrUpstreamNotConfigured, IsUpstreamUnavailableError, CodeUpstreamNotConfigured},
		{"upstream error", WrapUpstream("rate limited", errors.New("429")), IsUpstreamError, CodeUpstreamError},
		{"internal", WrapInternal("boom", nil), IsInternalError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.Equal(t, tt.code, GetErrorCode(wrapped))
		})
	}

	assert.Equal(t, CodeInternal, GetErrorCode(errors.New("plain")))
	assert.Empty(t, GetErrorType(errors.New("plain")))
	assert.False(t, IsUpstreamError(ErrUpstreamNotConfigured))
}
