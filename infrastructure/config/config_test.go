package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDRESS", "ENVIRONMENT", "STORAGE_BACKEND", "LOG_LEVEL", "SYNC_DEBOUNCE", "CONFIG_FILE", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, 2*time.Second, cfg.SyncDebounce)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SYNC_DEBOUNCE", "500")
	t.Setenv("REMOTE_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ENABLE_METRICS", "yes")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncDebounce)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nsync_debounce: 750ms\nallowed_origins: [\"https://app.example\"]\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SERVER_ADDRESS", ":9999")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 750*time.Millisecond, cfg.SyncDebounce)
	assert.Equal(t, []string{"https://app.example"}, cfg.AllowedOrigins)
	assert.Equal(t, ":9999", cfg.ServerAddress)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{StorageBackend: StorageMemory, LogLevel: "info", SyncDebounce: time.Second, Environment: "development"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "postgres" }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "zero debounce", mutate: func(c *Config) { c.SyncDebounce = 0 }, wantErr: true},
		{name: "dynamodb without table", mutate: func(c *Config) { c.StorageBackend = StorageDynamoDB }, wantErr: true},
		{name: "production on memory", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{name: "production complete", mutate: func(c *Config) {
			c.Environment = "production"
			c.StorageBackend = StorageDynamoDB
			c.DynamoDBTable = "maps"
			c.EventBusName = "bus"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	logger, level, err := cfg.NewLogger()
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()

	assert.Equal(t, zapcore.WarnLevel, level.Level())
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	LevelUpdater(level, zap.NewNop())(&Config{LogLevel: "debug"})
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
