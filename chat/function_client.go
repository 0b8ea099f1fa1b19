package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnauthenticated is returned when the chat function rejects the credential
var ErrUnauthenticated = errors.New("chat function rejected the credential")

// TokenSource yields the current bearer credential
type TokenSource interface {
	Token() string
}

// FunctionError is a non-2xx answer from the chat function
type FunctionError struct {
	StatusCode int
	Code       string
	Message    string
	Suggestion string
}

func (e *FunctionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chat function error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("chat function error (%d): %s", e.StatusCode, e.Message)
}

// FunctionClient sends widget requests to the chat function
type FunctionClient struct {
	url        string
	tokens     TokenSource
	httpClient *http.Client
}

// NewFunctionClient creates a client for the function at url
func NewFunctionClient(url string, tokens TokenSource, timeout time.Duration) *FunctionClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &FunctionClient{
		url:        url,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type functionReply struct {
	Response   string `json:"response"`
	Error      string `json:"error"`
	Code       string `json:"code"`
	Suggestion string `json:"suggestion"`
}

// Send implements Sender
func (c *FunctionClient) Send(ctx context.Context, req Request) (string, error) {
	if req.History == nil {
		req.History = []Turn{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var reply functionReply
	decodeErr := json.Unmarshal(data, &reply)

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return "", ErrUnauthenticated
		}
		fe := &FunctionError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil {
			fe.Code = reply.Code
			fe.Suggestion = reply.Suggestion
			if reply.Error != "" {
				fe.Message = reply.Error
			}
		}
		return "", fe
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}
	return reply.Response, nil
}
