package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Storage
	StorageBackend string `yaml:"storage_backend"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics  bool     `yaml:"enable_metrics"`
	EnableCORS     bool     `yaml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Editor sync client
	SyncDebounce  time.Duration `yaml:"sync_debounce"`
	RemoteBaseURL string        `yaml:"remote_base_url"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`

	// Optional YAML overlay
	ConfigFile string `yaml:"-"`
}

// LoadConfig loads configuration from environment variables, then applies
// the YAML file named by CONFIG_FILE on top when one is set.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:  getEnv("DYNAMODB_TABLE", "strategy-maps"),
		EventBusName:   getEnv("EVENT_BUS_NAME", ""),

		// Logging and features
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		EnableMetrics:  getEnvBool("ENABLE_METRICS", false),
		EnableCORS:     getEnvBool("ENABLE_CORS", true),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		SyncDebounce:  getEnvDuration("SYNC_DEBOUNCE", 2*time.Second),
		RemoteBaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:8080/api"),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),

		ConfigFile: getEnv("CONFIG_FILE", ""),
	}

	if cfg.ConfigFile != "" {
		if err := cfg.ApplyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// ApplyFile overlays the values present in a YAML file. Keys absent from
// the file keep their current value.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageDynamoDB:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageMemory, StorageDynamoDB, c.StorageBackend)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if c.SyncDebounce <= 0 {
		return fmt.Errorf("SYNC_DEBOUNCE must be positive")
	}

	if c.StorageBackend == StorageDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required")
	}

	if c.Environment == "production" {
		if c.StorageBackend != StorageDynamoDB {
			return fmt.Errorf("STORAGE_BACKEND must be %q in production", StorageDynamoDB)
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds the service logger. The returned level can be changed at
// runtime, which the config watcher does when the overlay file changes.
func (c *Config) NewLogger() (*zap.Logger, zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	logger, err := c.BuildLogger(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return logger, level, nil
}

// BuildLogger builds a production or development logger gated by level
func (c *Config) BuildLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if c.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration accepts Go durations ("2s") or bare milliseconds ("2000")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
