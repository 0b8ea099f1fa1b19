package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/infocampus/campus/config"
	"github.com/infocampus/campus/repositories/postgres"
	"github.com/infocampus/campus/services/providers"
	"github.com/infocampus/campus/services/providers/groq"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Host:            "invalid-host-that-does-not-exist.invalid",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Database:        "campus",
			SSLMode:         "disable",
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
		},
		Auth: config.AuthConfig{JWTSecret: "secret"},
		Chat: config.ChatConfig{Model: "llama-3.1-8b-instant", Temperature: 0.6, MaxTokens: 500},
	}
}

func TestAssemble(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)

	provider := groq.NewAdapter(providers.ProviderConfig{})
	deps := Assemble(testConfig(), postgres.Wrap(db, logger), provider, logger)

	assert.NotNil(t, deps.Repositories.Profiles)
	assert.NotNil(t, deps.Repositories.Academic)
	assert.NotNil(t, deps.Verifier)
	assert.NotNil(t, deps.Assistant)
	assert.NotNil(t, deps.AuthMiddleware)
	assert.NotNil(t, deps.ChatHandler)
	assert.NotNil(t, deps.HealthHandler)
	assert.False(t, deps.Provider.Configured())

	mock.ExpectClose()
	assert.NoError(t, deps.Close(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDependencies_DatabaseFailure(t *testing.T) {
	deps, err := NewDependencies(context.Background(), testConfig(), zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.Nil(t, deps)
	assert.Contains(t, err.Error(), "failed to initialize database")
}
