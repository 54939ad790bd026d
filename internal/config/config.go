package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gundash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Server   ServerConfig
	Database DatabaseConfig
	Model    ModelConfig
	LogLevel string
}

// DataConfig holds the incident dataset location
type DataConfig struct {
	Path string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the model artifact store. An empty URL keeps
// artifacts in memory.
type DatabaseConfig struct {
	URL string
}

// Driver returns the sqlx driver name for the URL: "postgres", "sqlite" or "" for memory
func (d DatabaseConfig) Driver() string {
	switch {
	case d.URL == "":
		return ""
	case strings.HasPrefix(d.URL, "postgres://"), strings.HasPrefix(d.URL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(d.URL, "sqlite:"):
		return "sqlite"
	default:
		return "unknown"
	}
}

// DSN returns the driver-specific data source name
func (d DatabaseConfig) DSN() string {
	if d.Driver() == "sqlite" {
		return strings.TrimPrefix(strings.TrimPrefix(d.URL, "sqlite:"), "//")
	}
	return d.URL
}

// ModelConfig holds intent trainer settings
type ModelConfig struct {
	MaxIter         int
	TestSize        float64
	Seed            int64
	BroadcastInputs bool
}

// DefaultModelConfig mirrors the trainer defaults: 1000 iterations, 20% test split, seed 42
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		MaxIter:         1000,
		TestSize:        0.2,
		Seed:            42,
		BroadcastInputs: true,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	defaults := DefaultModelConfig()
	config := &Config{
		Data: DataConfig{
			Path: getEnvOrDefault("DATASET_PATH", "guns_cleaned.csv"),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Model: ModelConfig{
			MaxIter:         getEnvIntOrDefault("MODEL_MAX_ITER", defaults.MaxIter),
			TestSize:        getEnvFloatOrDefault("MODEL_TEST_SIZE", defaults.TestSize),
			Seed:            int64(getEnvIntOrDefault("MODEL_SEED", int(defaults.Seed))),
			BroadcastInputs: getEnvBoolOrDefault("MODEL_BROADCAST_INPUTS", defaults.BroadcastInputs),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Data.Path) == "" {
		return errors.ConfigInvalid("DATASET_PATH is required")
	}
	if config.Model.TestSize <= 0 || config.Model.TestSize >= 1 {
		return errors.ConfigInvalid("MODEL_TEST_SIZE must be between 0 and 1")
	}
	if config.Model.MaxIter <= 0 {
		return errors.ConfigInvalid("MODEL_MAX_ITER must be positive")
	}
	if config.Database.Driver() == "unknown" {
		return errors.ConfigInvalid("DATABASE_URL must start with postgres:// or sqlite:")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
