package config

import (
	"os"
	"strconv"
	"time"

	"descstats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Limits  LimitsConfig
	Ingest  IngestConfig
	Display DisplayConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// LimitsConfig caps the size of a submission
type LimitsConfig struct {
	MaxUploadBytes int64
	MaxTextBytes   int
}

// IngestConfig controls how uploaded tables are read
type IngestConfig struct {
	HasHeader   bool
	Sheet       string
	PreviewRows int
}

// DisplayConfig controls rendered tables and charts
type DisplayConfig struct {
	ChartColumns int
	BarWidth     int
	Precision    int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "release"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Limits: LimitsConfig{
			MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
			MaxTextBytes:   getEnvIntOrDefault("MAX_TEXT_BYTES", 1000000),
		},
		Ingest: IngestConfig{
			HasHeader:   getEnvBoolOrDefault("INGEST_HAS_HEADER", true),
			Sheet:       getEnvOrDefault("XLSX_SHEET", ""),
			PreviewRows: getEnvIntOrDefault("PREVIEW_ROWS", 5),
		},
		Display: DisplayConfig{
			ChartColumns: getEnvIntOrDefault("CHART_COLUMNS", 4),
			BarWidth:     getEnvIntOrDefault("CHART_BAR_WIDTH", 20),
			Precision:    getEnvIntOrDefault("DISPLAY_PRECISION", 6),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Server.ShutdownTimeout <= 0 {
		return errors.ConfigInvalid("SHUTDOWN_TIMEOUT must be positive")
	}
	if config.Limits.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Limits.MaxTextBytes <= 0 {
		return errors.ConfigInvalid("MAX_TEXT_BYTES must be positive")
	}
	if config.Ingest.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must not be negative")
	}
	if config.Display.ChartColumns <= 0 {
		return errors.ConfigInvalid("CHART_COLUMNS must be positive")
	}
	if config.Display.BarWidth <= 0 {
		return errors.ConfigInvalid("CHART_BAR_WIDTH must be positive")
	}
	if config.Display.Precision <= 0 || config.Display.Precision > 17 {
		return errors.ConfigInvalid("DISPLAY_PRECISION must be between 1 and 17")
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
