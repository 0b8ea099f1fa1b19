package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AuthMiddleware extracts caller credentials. It never rejects: the chat
// service decides whether a missing credential matters, after it has checked
// its own configuration.
type AuthMiddleware struct {
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{logger: logger}
}

// ExtractCredential stores the Authorization bearer token in the request context
func (m *AuthMiddleware) ExtractCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			m.logger.Debug("request has no bearer credential",
				zap.String("request_id", GetRequestIDFromContext(r.Context())))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), token)))
	})
}

// extractToken returns the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
