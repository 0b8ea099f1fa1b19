package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infocampus/campus/app"
	"github.com/infocampus/campus/auth"
	"github.com/infocampus/campus/config"
	"github.com/infocampus/campus/repositories/postgres"
	"github.com/infocampus/campus/services/providers"
	"github.com/infocampus/campus/services/providers/groq"
	"github.com/infocampus/campus/utils"
)

const testSecret = "routes-test-secret-with-enough-length"

type env struct {
	handler http.Handler
	mock    sqlmock.Sqlmock
	groq    *httptest.Server
	calls   int
}

func newEnv(t *testing.T, apiKey string, rateLimit int) *env {
	t.Helper()
	e := &env{}

	e.groq = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.calls++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"llama-3.1-8b-instant","choices":[{"index":0,"message":{"role":"assistant","content":"Tienes 8.50 en Cálculo I."},"finish_reason":"stop"}],"usage":{"total_tokens":42}}`))
	}))
	t.Cleanup(e.groq.Close)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	e.mock = mock

	cfg := &config.Config{
		Server: config.ServerConfig{RateLimit: rateLimit, RateWindow: time.Minute},
		Auth:   config.AuthConfig{JWTSecret: testSecret},
		Chat:   config.ChatConfig{Model: "llama-3.1-8b-instant", Temperature: 0.6, MaxTokens: 500},
	}
	logger := zap.NewNop()
	provider := groq.NewAdapter(providers.ProviderConfig{APIKey: apiKey, BaseURL: e.groq.URL})

	e.handler = SetupRoutes(app.Assemble(cfg, postgres.Wrap(db, logger), provider, logger))
	return e
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("Origin", "http://localhost:5173")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, sub uuid.UUID) string {
	t.Helper()
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub.String(),
		Audience:  jwt.ClaimStrings{auth.DefaultAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestPreflight(t *testing.T) {
	e := newEnv(t, "key", 10)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assertCORS(t, w)
}

func TestChat_EndToEnd(t *testing.T) {
	e := newEnv(t, "key", 10)
	sub := uuid.New()

	e.mock.ExpectQuery("FROM usuarios").
		WithArgs(sub).
		WillReturnRows(sqlmock.NewRows([]string{"id", "supabase_id", "first_name", "last_name", "rol"}).
			AddRow(int64(9), sub.String(), "Ana", "Pérez", "estudiante"))
	e.mock.ExpectQuery("FROM inscripciones").
		WithArgs(int64(9)).
		WillReturnError(errors.New("relation does not exist"))
	e.mock.ExpectQuery("FROM pagos").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	w := e.do(http.MethodPost, "/chat", signToken(t, sub), map[string]interface{}{
		"message": "¿Cuál es mi nota de Cálculo?",
		"history": []map[string]string{{"role": "assistant", "content": "¡Hola!"}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertCORS(t, w)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Tienes 8.50 en Cálculo I.", body["response"])
	assert.Equal(t, 1, e.calls)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestChat_NotConfiguredTouchesNothing(t *testing.T) {
	e := newEnv(t, "", 10)

	w := e.do(http.MethodPost, "/chat", signToken(t, uuid.New()), map[string]string{"message": "hola"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assertCORS(t, w)
	body := decodeError(t, w)
	assert.Equal(t, "UPSTREAM_NOT_CONFIGURED", body.Code)
	assert.Equal(t, utils.DefaultSuggestion, body.Suggestion)
	assert.Zero(t, e.calls)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestChat_Unauthenticated(t *testing.T) {
	e := newEnv(t, "key", 10)

	for name, token := range map[string]string{"missing": "", "forged": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/chat", token, map[string]string{"message": "hola"})

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assertCORS(t, w)
			assert.Equal(t, "UNAUTHENTICATED", decodeError(t, w).Code)
		})
	}
	assert.Zero(t, e.calls)
}

func TestChat_RateLimited(t *testing.T) {
	e := newEnv(t, "", 1)

	first := e.do(http.MethodPost, "/chat", "", map[string]string{"message": "hola"})
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)

	second := e.do(http.MethodPost, "/chat", "", map[string]string{"message": "hola"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assertCORS(t, second)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, second).Code)
}

func TestNotFoundAndMethod(t *testing.T) {
	e := newEnv(t, "key", 10)

	w := e.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)

	w = e.do(http.MethodGet, "/chat", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assertCORS(t, w)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, "key", 10)

	w := e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
