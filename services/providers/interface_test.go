package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestChatResponse_FirstContent(t *testing.T) {
	var nilResp *ChatResponse
	if _, ok := nilResp.FirstContent(); ok {
		t.Error("FirstContent() on nil response reported a choice")
	}

	empty := &ChatResponse{}
	if _, ok := empty.FirstContent(); ok {
		t.Error("FirstContent() with no choices reported a choice")
	}

	resp := &ChatResponse{Choices: []Choice{
		{Message: Message{Role: RoleAssistant, Content: "first"}},
		{Message: Message{Role: RoleAssistant, Content: "second"}},
	}}
	got, ok := resp.FirstContent()
	if !ok || got != "first" {
		t.Errorf("FirstContent() = %q, %v, want first, true", got, ok)
	}
}

func TestProviderError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := NewProviderError("groq", "rate_limit_exceeded", "Rate limit reached", 429, cause)

	if err.Error() != "Rate limit reached: quota exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("ProviderError does not unwrap to its cause")
	}

	wrapped := fmt.Errorf("assistant: %w", err)
	if got := UpstreamMessage(wrapped); got != "Rate limit reached" {
		t.Errorf("UpstreamMessage() = %q, want Rate limit reached", got)
	}
	if got := UpstreamMessage(errors.New("plain")); got != "" {
		t.Errorf("UpstreamMessage() on plain error = %q, want empty", got)
	}
}
