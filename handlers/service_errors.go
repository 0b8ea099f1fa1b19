package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/infocampus/campus/services"
	"github.com/infocampus/campus/utils"
)

// StatusForError maps a domain error to its HTTP status
func StatusForError(err error) int {
	switch {
	case services.IsUnauthenticatedError(err):
		return http.StatusUnauthorized
	case services.IsValidationError(err):
		return http.StatusBadRequest
	case services.IsUpstreamUnavailableError(err):
		return http.StatusServiceUnavailable
	case services.IsUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	status := StatusForError(err)
	code := services.GetErrorCode(err)

	message := "Error interno del servidor"
	var details map[string]interface{}
	if domainErr := asDomainError(err); domainErr != nil && status != http.StatusInternalServerError {
		message = domainErr.Message
		details = domainErr.Details
	}

	if status == http.StatusInternalServerError {
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
	} else {
		logger.Debug("handled service error",
			zap.Int("status", status),
			zap.String("code", code),
			zap.Error(err))
	}

	if err := utils.WriteError(w, status, code, message, details); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

func asDomainError(err error) *services.DomainError {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}
