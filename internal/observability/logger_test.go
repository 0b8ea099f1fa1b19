package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/infocampus/campus/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("json logger at info", func(t *testing.T) {
		logger, err := NewLogger(config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("text logger at debug", func(t *testing.T) {
		logger, err := NewLogger(config.ObservabilityConfig{LogLevel: "DEBUG", LogFormat: "text"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLogger(config.ObservabilityConfig{LogLevel: "loud"})
		assert.Error(t, err)
	})
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewNop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := zap.NewExample()
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
