// Package groq adapts Groq's OpenAI-compatible chat completion API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/infocampus/campus/services/providers"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
)

// Adapter implements the Provider interface for Groq
type Adapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Groq adapter
func NewAdapter(config providers.ProviderConfig) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "groq"
}

// Configured reports whether an API key was supplied
func (a *Adapter) Configured() bool {
	return a.config.APIKey != ""
}

// ChatCompletion performs a single chat completion request. Failures are
// not retried.
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	if !a.Configured() {
		return nil, providers.NewProviderError(a.Name(), "NOT_CONFIGURED", "API key is not configured", 0, providers.ErrNotConfigured)
	}

	startTime := time.Now()

	reqBody, err := json.Marshal(a.buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "MARSHAL_ERROR", "Failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.config.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "REQUEST_ERROR", "Failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "HTTP_ERROR", "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "READ_ERROR", "Failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, a.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR", "Failed to unmarshal response", httpResp.StatusCode, err)
	}

	return a.convertResponse(&completion, time.Since(startTime)), nil
}

func (a *Adapter) buildRequest(req *providers.ChatRequest) *completionRequest {
	out := &completionRequest{
		Model:       req.Model,
		Messages:    make([]completionMessage, len(req.Messages)),
		Temperature: req.Temperature,
	}
	for i, msg := range req.Messages {
		out.Messages[i] = completionMessage{Role: msg.Role, Content: msg.Content}
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = &req.MaxTokens
	}
	if req.User != "" {
		out.User = &req.User
	}
	return out
}

func (a *Adapter) convertResponse(c *completionResponse, latency time.Duration) *providers.ChatResponse {
	resp := &providers.ChatResponse{
		ID:       c.ID,
		Model:    c.Model,
		Provider: a.Name(),
		Choices:  make([]providers.Choice, len(c.Choices)),
		Usage: providers.Usage{
			PromptTokens:     c.Usage.PromptTokens,
			CompletionTokens: c.Usage.CompletionTokens,
			TotalTokens:      c.Usage.TotalTokens,
		},
		Latency: latency,
	}
	for i, choice := range c.Choices {
		resp.Choices[i] = providers.Choice{
			Index: choice.Index,
			Message: providers.Message{
				Role:    choice.Message.Role,
				Content: choice.Message.Content,
			},
			FinishReason: choice.FinishReason,
		}
	}
	return resp
}

// handleErrorResponse keeps the upstream's own message when it sent one
func (a *Adapter) handleErrorResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		msg := string(bytes.TrimSpace(body))
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return providers.NewProviderError(a.Name(), "UNKNOWN_ERROR", msg, statusCode, err)
	}

	code := errResp.Error.Code
	if code == "" {
		code = errResp.Error.Type
	}
	return providers.NewProviderError(
		a.Name(),
		code,
		errResp.Error.Message,
		statusCode,
		errors.New(errResp.Error.Message),
	)
}

// wire types of the OpenAI-compatible API

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
	User        *string             `json:"user,omitempty"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int               `json:"index"`
		Message      completionMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
