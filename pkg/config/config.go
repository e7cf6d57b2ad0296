package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Local data cache
	Data DataConfig

	// Remote data-lake provider
	Datalake DatalakeConfig

	// Impact analysis
	Analysis AnalysisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig holds the local cache layout
type DataConfig struct {
	// Dir is the root directory for per-location CSV cache files.
	// Each dataset keeps its own subdirectory underneath.
	Dir string
}

// DatalakeConfig holds the remote data-lake API configuration
type DatalakeConfig struct {
	BaseURL  string
	APIKey   string
	TypeName string // entity type queried by evalmetrics, e.g. outbreaklocation

	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
	PageLimit int // rows per evalmetrics page when paginating
}

// AnalysisConfig holds impact-score engine tuning
type AnalysisConfig struct {
	// GapWarnDays is the skipped-day count above which the engine
	// emits a large-gap warning for a regression window.
	GapWarnDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},

		Datalake: DatalakeConfig{
			BaseURL:   getEnv("DATALAKE_BASE_URL", "https://api.c3.ai/covid/api/1"),
			APIKey:    getEnv("DATALAKE_API_KEY", ""),
			TypeName:  getEnv("DATALAKE_TYPE_NAME", "outbreaklocation"),
			Timeout:   getEnvAsDuration("DATALAKE_TIMEOUT", "60s"),
			RateLimit: getEnvAsFloat("DATALAKE_RATE_LIMIT", 2.0),
			RateBurst: getEnvAsInt("DATALAKE_RATE_BURST", 1),
			PageLimit: getEnvAsInt("DATALAKE_PAGE_LIMIT", 2000),
		},

		Analysis: AnalysisConfig{
			GapWarnDays: getEnvAsInt("IMPACT_GAP_WARN_DAYS", 10),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	if c.Datalake.BaseURL == "" {
		return fmt.Errorf("DATALAKE_BASE_URL is required")
	}

	if c.Analysis.GapWarnDays < 0 {
		return fmt.Errorf("IMPACT_GAP_WARN_DAYS must not be negative")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
