package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/infocampus/campus/internal/observability"
	"github.com/infocampus/campus/middleware"
	"github.com/infocampus/campus/services/assistant"
	"github.com/infocampus/campus/utils"
)

// maxChatBody bounds the request body; the message and history caps are far below it
const maxChatBody = 256 << 10

// ChatService defines the interface for answering chat messages
type ChatService interface {
	Chat(ctx context.Context, credential string, req *assistant.ChatRequest) (*assistant.ChatReply, error)
}

// ChatHandler handles the campus chat endpoint
type ChatHandler struct {
	service ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// HandlePreflight handles OPTIONS /chat
func (h *ChatHandler) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteText(w, http.StatusOK, "ok")
}

// HandleChat handles POST /chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	var req assistant.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	reply, err := h.service.Chat(ctx, middleware.GetCredentialFromContext(ctx), &req)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, reply); err != nil {
		logger.Error("failed to write chat response", zap.Error(err))
	}
}
