package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infocampus/campus/config"
)

type fakeStore struct {
	token   string
	logouts int
}

func (s *fakeStore) Token() string { return s.token }

func (s *fakeStore) Logout() error {
	s.logouts++
	s.token = ""
	return nil
}

type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(path string) {
	m.Called(path)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Alert(message string) {
	m.Called(message)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, scheme string) (*Client, *fakeStore, *MockNavigator, *MockNotifier) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := &fakeStore{token: "tok-123"}
	nav := &MockNavigator{}
	notifier := &MockNotifier{}
	cfg := config.ClientConfig{APIURL: srv.URL + "/api/", AuthScheme: scheme, Timeout: 5 * time.Second}
	return New(cfg, store, nav, notifier, zap.NewNop()), store, nav, notifier
}

func TestClient_AttachesCredential(t *testing.T) {
	tests := []struct {
		scheme string
		want   string
	}{
		{"Bearer", "Bearer tok-123"},
		{"Token", "Token tok-123"},
		{"", "tok-123"},
	}

	for _, tt := range tests {
		t.Run("scheme "+tt.scheme, func(t *testing.T) {
			var got string
			c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				assert.Equal(t, "/api/materias", r.URL.Path)
				w.Write([]byte(`[]`))
			}, tt.scheme)

			var out []any
			require.NoError(t, c.Get(context.Background(), "/materias", &out))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_NoCredentialWhenLoggedOut(t *testing.T) {
	var got string
	c, store, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, "Bearer")
	store.token = ""

	require.NoError(t, c.Post(context.Background(), "/auth/login", map[string]string{"username": "a"}, nil))
	assert.Empty(t, got)
}

func TestClient_UnauthorizedLogsOutAndNavigatesOnce(t *testing.T) {
	calls := 0
	c, store, nav, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Token expired"}`))
	}, "Bearer")
	nav.On("Navigate", "/login").Return()

	err := c.Get(context.Background(), "/inscripciones/estudiante/mis-inscripciones", nil)

	assert.ErrorIs(t, err, ErrAuthenticationExpired)
	assert.True(t, IsAuthExpired(err))
	assert.Equal(t, 1, calls, "401 must not be retried")
	assert.Equal(t, 1, store.logouts)
	assert.Empty(t, store.token)
	nav.AssertNumberOfCalls(t, "Navigate", 1)
	notifier.AssertNotCalled(t, "Alert", mock.Anything)
}

func TestClient_ForbiddenAlertsAndKeepsSession(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"server message", `{"error":"Student in arrears"}`, "Student in arrears"},
		{"detail message", `{"detail":"Not allowed"}`, "Not allowed"},
		{"fallback", ``, DefaultForbiddenMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store, nav, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(tt.body))
			}, "Bearer")
			notifier.On("Alert", "SYSTEM: "+tt.message).Return()

			err := c.Get(context.Background(), "/notas", nil)

			var fe *ForbiddenError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.message, fe.Message)
			assert.Equal(t, "tok-123", store.token)
			assert.Zero(t, store.logouts)
			notifier.AssertExpectations(t)
			nav.AssertNotCalled(t, "Navigate", mock.Anything)
		})
	}
}

func TestClient_ValidationErrors(t *testing.T) {
	t.Run("fastapi detail list", func(t *testing.T) {
		c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":[{"loc":["body","nota"],"msg":"must be <= 10"}]}`))
		}, "Bearer")

		err := c.Put(context.Background(), "/inscripciones/1/nota", map[string]float64{"nota": 11}, nil)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "must be <= 10", ve.Fields["nota"])
		assert.True(t, IsValidation(err))
	})

	t.Run("field map", func(t *testing.T) {
		c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"monto":["This field is required."]}`))
		}, "Bearer")

		err := c.Post(context.Background(), "/estudiantes/1/registrar-pago", map[string]any{}, nil)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "This field is required.", ve.Fields["monto"])
		assert.Contains(t, UserMessage(err), "monto")
	})
}

func TestClient_OtherStatuses(t *testing.T) {
	c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "Bearer")

	err := c.Get(context.Background(), "/dashboards/finanzas", nil)

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)
	assert.Equal(t, "Internal Server Error", UserMessage(err))
}

func TestClient_NetworkError(t *testing.T) {
	cfg := config.ClientConfig{APIURL: "http://127.0.0.1:1", AuthScheme: "Bearer", Timeout: time.Second}
	c := New(cfg, &fakeStore{}, &MockNavigator{}, &MockNotifier{}, zap.NewNop())

	err := c.Get(context.Background(), "/materias", nil)

	assert.True(t, IsNetwork(err))
	assert.Equal(t, "Could not reach the server. Check your connection.", UserMessage(err))
}

func TestClient_Download(t *testing.T) {
	c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reportes/estado-cuenta/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}, "Bearer")

	data, err := c.Download(context.Background(), "/reportes/estado-cuenta/me")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestClient_AuthenticateSkipsSessionPolicy(t *testing.T) {
	var got string
	c, store, nav, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Credenciales incorrectas"}`))
	}, "Bearer")

	_, err := c.Authenticate(context.Background(), "/auth/login", map[string]string{"username": "a"})

	var ce *CredentialsError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusUnauthorized, ce.StatusCode)
	assert.Equal(t, "Credenciales incorrectas", UserMessage(err))
	assert.Empty(t, got)
	assert.Equal(t, "tok-123", store.token)
	assert.Zero(t, store.logouts)
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
	notifier.AssertNotCalled(t, "Alert", mock.Anything)
}

func TestClient_AuthenticateServerError(t *testing.T) {
	c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "Bearer")

	_, err := c.Authenticate(context.Background(), "/auth/login", nil)

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadGateway, ae.StatusCode)
	assert.False(t, IsCredentials(err))
}

func TestParseErrorBody_TruncatesByRune(t *testing.T) {
	body := []byte(strings.Repeat("ñ", 250))

	got := parseErrorBody(body).message

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxRawMessage, utf8.RuneCountInString(got))
}
