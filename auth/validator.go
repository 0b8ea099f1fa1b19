// Package auth verifies the access tokens presented to the chat function.
//
// Tokens are HS256 JWTs issued by the hosted auth project. The subject claim
// is the auth user id that links to usuarios.supabase_id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/infocampus/campus/utils"
)

// DefaultAudience is the audience the auth project stamps on user sessions
const DefaultAudience = "authenticated"

var (
	// ErrInvalidToken is returned when the token is malformed or its signature does not verify
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrNoSecret is returned when no verification secret is configured
	ErrNoSecret = errors.New("jwt secret not configured")
)

// Claims represents the claims carried by an auth project access token
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity is a verified caller
type Identity struct {
	Subject   uuid.UUID
	Email     string
	Role      string
	ExpiresAt time.Time
}

// JWTValidator validates HS256 access tokens with a shared secret
type JWTValidator struct {
	secret   []byte
	audience string
	now      func() time.Time
}

// NewJWTValidator creates a validator. An empty audience skips the aud check.
func NewJWTValidator(secret, audience string) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(secret),
		audience: audience,
		now:      time.Now,
	}
}

// Verify validates tokenString and returns the caller identity
func (v *JWTValidator) Verify(_ context.Context, tokenString string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := utils.ParseUUID(claims.Subject, "sub")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	identity := &Identity{
		Subject: sub,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
