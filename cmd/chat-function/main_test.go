package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infocampus/campus/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		obs     config.ObservabilityConfig
		wantErr bool
	}{
		{name: "default json logger", obs: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"}},
		{name: "development console logger", obs: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"}},
		{name: "invalid log level", obs: config.ObservabilityConfig{LogLevel: "loud", LogFormat: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initLogger(&config.Config{Observability: tt.obs})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			_ = logger.Sync()
		})
	}
}
