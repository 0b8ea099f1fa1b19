package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/infocampus/campus/auth"
	"github.com/infocampus/campus/config"
	"github.com/infocampus/campus/handlers"
	"github.com/infocampus/campus/middleware"
	"github.com/infocampus/campus/repositories"
	"github.com/infocampus/campus/repositories/postgres"
	"github.com/infocampus/campus/services/assistant"
	"github.com/infocampus/campus/services/providers"
	"github.com/infocampus/campus/services/providers/groq"
)

// Dependencies holds all chat function dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Repositories *repositories.Repositories

	// Services
	Provider  providers.Provider
	Verifier  *auth.JWTValidator
	Assistant *assistant.Service

	// HTTP
	AuthMiddleware *middleware.AuthMiddleware
	ChatHandler    *handlers.ChatHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies opens the database and wires every component
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	provider := groq.NewAdapter(providers.ProviderConfig{
		APIKey:  cfg.Providers.Groq.APIKey,
		BaseURL: cfg.Providers.Groq.BaseURL,
		Timeout: cfg.Providers.Groq.Timeout,
	})

	deps := Assemble(cfg, db, provider, logger)
	logger.Info("all dependencies initialized successfully",
		zap.String("provider", provider.Name()),
		zap.Bool("provider_configured", provider.Configured()))
	return deps, nil
}

// Assemble wires the components around an open database and a provider
func Assemble(cfg *config.Config, db *postgres.DB, provider providers.Provider, logger *zap.Logger) *Dependencies {
	d := &Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		Provider: provider,
	}

	d.Repositories = &repositories.Repositories{
		Profiles: postgres.NewProfileRepository(db, logger),
		Academic: postgres.NewAcademicRepository(db, logger),
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET not set, every chat credential will be rejected")
	}
	d.Verifier = auth.NewJWTValidator(cfg.Auth.JWTSecret, auth.DefaultAudience)

	d.Assistant = assistant.NewService(d.Verifier, d.Repositories, provider, cfg.Chat, logger)

	d.AuthMiddleware = middleware.NewAuthMiddleware(logger)
	d.ChatHandler = handlers.NewChatHandler(d.Assistant, logger)
	d.HealthHandler = handlers.NewHealthHandler(db, provider, logger)

	if !provider.Configured() {
		logger.Warn("completion provider not configured, chat requests will answer 503",
			zap.String("provider", provider.Name()))
	}
	return d
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
