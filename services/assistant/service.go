// Package assistant answers campus chat messages with an LLM completion
// grounded on the caller's academic profile.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/infocampus/campus/auth"
	"github.com/infocampus/campus/config"
	"github.com/infocampus/campus/internal/observability"
	"github.com/infocampus/campus/internal/prompt"
	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/repositories"
	"github.com/infocampus/campus/services"
	"github.com/infocampus/campus/services/providers"
	"github.com/infocampus/campus/utils"
)

// CredentialVerifier resolves a bearer credential to an identity
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// Service runs the chat pipeline: credential, profile, context, completion
type Service struct {
	verifier CredentialVerifier
	profiles repositories.ProfileRepository
	academic repositories.AcademicRepository
	provider providers.Provider
	cfg      config.ChatConfig
	logger   *zap.Logger
}

// NewService creates a new assistant service
func NewService(
	verifier CredentialVerifier,
	repos *repositories.Repositories,
	provider providers.Provider,
	cfg config.ChatConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		verifier: verifier,
		profiles: repos.Profiles,
		academic: repos.Academic,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Chat answers req on behalf of the caller holding credential.
// The provider credential is checked before the caller is resolved so that a
// misconfigured deployment never touches the data store.
func (s *Service) Chat(ctx context.Context, credential string, req *ChatRequest) (*ChatReply, error) {
	logger := observability.FromContext(ctx, s.logger)

	if credential == "" {
		return nil, services.ErrMissingCredential
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation, err.Error(), err).
			WithDetail("fields", utils.GetValidationFields(err))
	}
	if !s.provider.Configured() {
		logger.Error("completion provider is not configured", zap.String("provider", s.provider.Name()))
		return nil, services.ErrUpstreamNotConfigured
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		logger.Warn("credential rejected", zap.Error(err))
		return nil, services.ErrInvalidCredential
	}

	logger = logger.With(zap.String("subject", identity.Subject.String()))
	logger.Debug("chat request",
		zap.String("message", prompt.Preview(req.Message, 120)),
		zap.Int("history", len(req.History)))
	if prompt.IsInjectionAttempt(req.Message) {
		logger.Warn("possible prompt injection", zap.Strings("kinds", prompt.InjectionKinds(req.Message)))
	}

	pc := promptContext{Profile: s.loadProfile(ctx, logger, identity)}
	if pc.Profile.Role == models.RoleStudent && pc.Profile.HasInternalID() {
		s.loadStanding(ctx, logger, &pc)
	}

	completionReq := &providers.ChatRequest{
		Model:       s.cfg.Model,
		Messages:    buildMessages(buildSystemPrompt(pc), req),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		User:        identity.Subject.String(),
	}

	start := time.Now()
	resp, err := s.provider.ChatCompletion(ctx, completionReq)
	if err != nil {
		logger.Error("completion failed",
			zap.String("provider", s.provider.Name()),
			zap.Error(err))
		return nil, s.upstreamError(err)
	}

	logger.Info("completion succeeded",
		zap.String("provider", resp.Provider),
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)))

	content, ok := resp.FirstContent()
	if !ok || content == "" {
		content = FallbackReply
	}
	return &ChatReply{Response: content}, nil
}

func (s *Service) loadProfile(ctx context.Context, logger *zap.Logger, identity *auth.Identity) *models.AcademicProfile {
	profile, err := s.profiles.GetByAuthID(ctx, identity.Subject)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("profile lookup failed, using default profile",
				zap.String("auth_id", identity.Subject.String()),
				zap.Error(err))
		}
		return models.DefaultProfile()
	}
	return profile
}

// loadStanding enriches pc with grades and debts. Failures only degrade the prompt.
func (s *Service) loadStanding(ctx context.Context, logger *zap.Logger, pc *promptContext) {
	id := pc.Profile.ID

	enrollments, err := s.academic.Enrollments(ctx, id)
	if err != nil {
		logger.Warn("failed to load enrollments", zap.Int64("student_id", id), zap.Error(err))
	} else {
		pc.Enrollments = enrollments
		pc.EnrollmentsLoaded = true
	}

	pending, err := s.academic.PendingPayments(ctx, id)
	if err != nil {
		logger.Warn("failed to load pending payments", zap.Int64("student_id", id), zap.Error(err))
	} else {
		pc.PendingPayments = pending
		pc.PaymentsLoaded = true
	}
}

func (s *Service) upstreamError(err error) error {
	msg := providers.UpstreamMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	return services.WrapUpstream(fmt.Sprintf("%s: %s", s.provider.Name(), msg), err)
}

func buildMessages(system string, req *ChatRequest) []providers.Message {
	messages := make([]providers.Message, 0, len(req.History)+2)
	messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: system})
	for _, turn := range req.History {
		messages = append(messages, providers.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, providers.Message{Role: providers.RoleUser, Content: req.Message})
}
