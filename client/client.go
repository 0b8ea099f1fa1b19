// Package client is the single HTTP client used by every domain service.
// It attaches the session credential to each request and applies the
// session-wide 401/403 policy to each response.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/infocampus/campus/config"
)

const loginPath = "/login"

// maxRawMessage caps, in runes, a non-JSON error body used as a message
const maxRawMessage = 200

// SessionStore is the part of session.Store the client depends on
type SessionStore interface {
	Token() string
	Logout() error
}

// Navigator moves the user to another view
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a blocking message to the user
type Notifier interface {
	Alert(message string)
}

// Client talks to the REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	anonClient *http.Client
	store      SessionStore
	nav        Navigator
	notifier   Notifier
	logger     *zap.Logger
}

// New creates a client. The credential is read from store on every request.
func New(cfg config.ClientConfig, store SessionStore, nav Navigator, notifier Notifier, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &authTransport{
				base:   http.DefaultTransport,
				store:  store,
				scheme: cfg.AuthScheme,
			},
		},
		anonClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		nav:        nav,
		notifier:   notifier,
		logger:     logger,
	}
}

// authTransport attaches "<scheme> <token>" when the session has a credential.
// An empty scheme sends the bare token.
type authTransport struct {
	base   http.RoundTripper
	store  SessionStore
	scheme string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.store.Token()
	if token == "" || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	if t.scheme == "" {
		r.Header.Set("Authorization", token)
	} else {
		r.Header.Set("Authorization", t.scheme+" "+token)
	}
	return t.base.RoundTrip(r)
}

// Get decodes the JSON response of GET path into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the response into out
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do performs one request. out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	data, err := c.roundTrip(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Download returns the raw response body of GET path
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	return c.roundTrip(ctx, http.MethodGet, path, nil, "*/*")
}

// DoRaw performs one request and returns the undecoded 2xx body
func (c *Client) DoRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.roundTrip(ctx, method, path, body, "application/json")
}

// Authenticate posts credentials without the session credential and
// outside the 401/403 policy. A rejection is a *CredentialsError; the
// current session is left untouched.
func (c *Client) Authenticate(ctx context.Context, path string, body any) ([]byte, error) {
	data, status, err := c.send(ctx, c.anonClient, http.MethodPost, path, body, "application/json")
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		return data, nil
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, &CredentialsError{StatusCode: status, Message: parseErrorBody(data).message}
	}
	msg := parseErrorBody(data).message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return nil, &APIError{StatusCode: status, Message: msg}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, accept string) ([]byte, error) {
	data, status, err := c.send(ctx, c.httpClient, method, path, body, accept)
	if err != nil {
		return nil, err
	}
	if status >= 200 && status < 300 {
		return data, nil
	}
	return nil, c.handleErrorResponse(status, data)
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, body any, accept string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, 0, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &NetworkError{Op: "read " + path, Err: err}
	}

	c.logger.Debug("api response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return data, resp.StatusCode, nil
}

// handleErrorResponse applies the session policy and maps the status to an error
func (c *Client) handleErrorResponse(status int, body []byte) error {
	parsed := parseErrorBody(body)

	switch {
	case status == http.StatusUnauthorized:
		if err := c.store.Logout(); err != nil {
			c.logger.Warn("failed to clear session after 401", zap.Error(err))
		}
		c.nav.Navigate(loginPath)
		return ErrAuthenticationExpired

	case status == http.StatusForbidden:
		msg := parsed.message
		if msg == "" {
			msg = DefaultForbiddenMessage
		}
		c.notifier.Alert("SYSTEM: " + msg)
		return &ForbiddenError{Message: msg}

	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &ValidationError{StatusCode: status, Message: parsed.message, Fields: parsed.fields}
	}

	msg := parsed.message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

type errorBody struct {
	message string
	fields  map[string]string
}

// parseErrorBody understands {"error"}, {"detail": string | [{loc, msg}]},
// {"message"} and field maps of {"field": ["msg"]}
func parseErrorBody(body []byte) errorBody {
	var out errorBody

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		out.message = strings.TrimSpace(string(body))
		if utf8.RuneCountInString(out.message) > maxRawMessage {
			out.message = string([]rune(out.message)[:maxRawMessage])
		}
		return out
	}

	for _, key := range []string{"error", "detail", "message"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil {
			out.message = s
			delete(raw, key)
			break
		}
		if key == "detail" {
			var items []struct {
				Loc []any  `json:"loc"`
				Msg string `json:"msg"`
			}
			if json.Unmarshal(v, &items) == nil {
				out.fields = make(map[string]string, len(items))
				for _, it := range items {
					field := "body"
					if len(it.Loc) > 0 {
						field = fmt.Sprint(it.Loc[len(it.Loc)-1])
					}
					out.fields[field] = it.Msg
				}
				delete(raw, key)
			}
		}
	}

	for key, v := range raw {
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil && len(msgs) > 0 {
			if out.fields == nil {
				out.fields = make(map[string]string)
			}
			out.fields[key] = strings.Join(msgs, " ")
		}
	}
	return out
}

// IsAuthExpired reports whether err came from a 401
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthenticationExpired)
}
