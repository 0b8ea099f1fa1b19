package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(sub string) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{DefaultAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "ana@campus.edu",
		Role:  "authenticated",
	}
}

func TestJWTValidator_Verify(t *testing.T) {
	sub := uuid.New()
	validator := NewJWTValidator(testSecret, DefaultAudience)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(sub.String()))

		identity, err := validator.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, sub, identity.Subject)
		assert.Equal(t, "ana@campus.edu", identity.Email)
		assert.False(t, identity.ExpiresAt.IsZero())
	})

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := validClaims(sub.String())
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrTokenExpired,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte("another-secret"), validClaims(sub.String()))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(sub.String()))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				c := validClaims(sub.String())
				c.Audience = jwt.ClaimStrings{"anon"}
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := validClaims(sub.String())
				c.ExpiresAt = nil
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "subject is not a uuid",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("42"))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func(*testing.T) string { return "not.a.jwt" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Verify(context.Background(), tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTValidator_NoSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(uuid.NewString()))

	_, err := NewJWTValidator("", DefaultAudience).Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestJWTValidator_NoAudienceCheck(t *testing.T) {
	c := validClaims(uuid.NewString())
	c.Audience = nil
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)

	_, err := NewJWTValidator(testSecret, "").Verify(context.Background(), token)
	assert.NoError(t, err)
}
