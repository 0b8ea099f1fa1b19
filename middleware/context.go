package middleware

import (
	"context"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// CredentialKey is the context key for the caller's bearer credential
	CredentialKey contextKey = "credential"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetCredentialFromContext retrieves the bearer credential, or "" when the
// request carried none
func GetCredentialFromContext(ctx context.Context) string {
	if val := ctx.Value(CredentialKey); val != nil {
		if credential, ok := val.(string); ok {
			return credential
		}
	}
	return ""
}

// WithCredential adds a bearer credential to the context
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, CredentialKey, credential)
}
