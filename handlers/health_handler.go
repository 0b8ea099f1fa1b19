package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/infocampus/campus/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// DatabaseChecker is satisfied by postgres.DB
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// ProviderChecker reports whether the completion provider has a credential
type ProviderChecker interface {
	Configured() bool
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db       DatabaseChecker
	provider ProviderChecker
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseChecker, provider ProviderChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		provider: provider,
		logger:   logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
// The database must answer; an unconfigured provider is reported but does not
// fail readiness since chat requests then answer 503 on their own.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	switch {
	case h.db == nil:
		checks["database"] = "not_initialized"
		healthy = false
	default:
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			healthy = false
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.provider != nil && h.provider.Configured() {
		checks["provider"] = "configured"
	} else {
		checks["provider"] = "not_configured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
