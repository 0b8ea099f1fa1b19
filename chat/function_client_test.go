package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestFunctionClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hola", req.Message)
		assert.Equal(t, []Turn{{Role: SpeakerAssistant, Content: Greeting}}, req.History)

		w.Write([]byte(`{"response":"¡Hola!"}`))
	}))
	defer srv.Close()

	c := NewFunctionClient(srv.URL, staticToken("tok"), time.Second)
	reply, err := c.Send(context.Background(), Request{
		Message: "hola",
		History: []Turn{{Role: SpeakerAssistant, Content: Greeting}},
	})

	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", reply)
}

func TestFunctionClient_EmptyHistoryIsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.JSONEq(t, `[]`, string(raw["history"]))
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewFunctionClient(srv.URL, staticToken("tok"), time.Second).Send(context.Background(), Request{Message: "x"})
	require.NoError(t, err)
}

func TestFunctionClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(*testing.T, error)
	}{
		{
			name:   "unauthenticated",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid token","code":"UNAUTHENTICATED"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthenticated)
			},
		},
		{
			name:   "upstream not configured",
			status: http.StatusServiceUnavailable,
			body:   `{"error":"assistant unavailable","code":"UPSTREAM_NOT_CONFIGURED","suggestion":"Intenta recargar la página."}`,
			check: func(t *testing.T, err error) {
				var fe *FunctionError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "UPSTREAM_NOT_CONFIGURED", fe.Code)
				assert.Equal(t, "assistant unavailable", fe.Message)
				assert.Equal(t, "Intenta recargar la página.", fe.Suggestion)
			},
		},
		{
			name:   "non json error",
			status: http.StatusBadGateway,
			body:   `upstream down`,
			check: func(t *testing.T, err error) {
				var fe *FunctionError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "Bad Gateway", fe.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewFunctionClient(srv.URL, staticToken("tok"), time.Second).Send(context.Background(), Request{Message: "x"})
			tt.check(t, err)
		})
	}
}
