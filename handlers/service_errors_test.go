package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infocampus/campus/services"
	"github.com/infocampus/campus/utils"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "missing credential",
			err:             services.ErrMissingCredential,
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    services.CodeUnauthenticated,
			expectedMessage: "missing authorization credential",
		},
		{
			name:            "validation error",
			err:             services.NewDomainError(services.ErrorTypeValidation, "invalid input", nil),
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    services.CodeValidation,
			expectedMessage: "invalid input",
		},
		{
			name:            "provider not configured",
			err:             services.ErrUpstreamNotConfigured,
			expectedStatus:  http.StatusServiceUnavailable,
			expectedCode:    services.CodeUpstreamNotConfigured,
			expectedMessage: "assistant is not configured",
		},
		{
			name:            "provider failure keeps upstream message",
			err:             services.WrapUpstream("groq: Invalid API Key", errors.New("401")),
			expectedStatus:  http.StatusBadGateway,
			expectedCode:    services.CodeUpstreamError,
			expectedMessage: "groq: Invalid API Key",
		},
		{
			name:            "internal error hides detail",
			err:             services.WrapInternal("query failed", errors.New("password=secret")),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    services.CodeInternal,
			expectedMessage: "Error interno del servidor",
		},
		{
			name:            "wrapped domain error",
			err:             fmt.Errorf("chat: %w", services.ErrInvalidCredential),
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    services.CodeUnauthenticated,
			expectedMessage: "invalid authorization credential",
		},
		{
			name:            "unknown error",
			err:             errors.New("unknown"),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    services.CodeInternal,
			expectedMessage: "Error interno del servidor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedCode, response.Code)
			assert.Equal(t, tt.expectedMessage, response.Error)
			assert.Equal(t, utils.DefaultSuggestion, response.Suggestion)
		})
	}
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())
	assert.Empty(t, w.Body.String())
}

func TestHandleServiceError_ValidationDetails(t *testing.T) {
	err := services.NewDomainError(services.ErrorTypeValidation, "message is required", nil).
		WithDetail("fields", map[string]string{"message": "required"})

	w := httptest.NewRecorder()
	HandleServiceError(w, err, zap.NewNop())

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	fields, ok := response.Details["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "required", fields["message"])
}
