// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	SessionTTL  time.Duration
	Generation  GenerationConfig
	RateLimit   RateLimitConfig
	Stream      StreamConfig
}

// GenerationConfig configures the text-completion capability.
type GenerationConfig struct {
	APIKey          string
	BaseURL         string // OpenAI-compatible gateway; empty = api.openai.com
	Model           string
	ClassifierModel string
	MirrorModel     string
	MaxTokens       int
}

// RateLimitConfig controls per-user chat throttling.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// StreamConfig controls streaming response behavior.
type StreamConfig struct {
	KeepaliveInterval  time.Duration
	MaxRequestBodySize int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/threshold.db"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		Generation: GenerationConfig{
			APIKey:          getEnv("GENERATION_API_KEY", ""),
			BaseURL:         getEnv("GENERATION_BASE_URL", ""),
			Model:           getEnv("GENERATION_MODEL", "gpt-4o"),
			ClassifierModel: getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
			MirrorModel:     getEnv("MIRROR_MODEL", "gpt-4o"),
			MaxTokens:       getEnvInt("GENERATION_MAX_TOKENS", 1024),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 10),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Stream: StreamConfig{
			KeepaliveInterval:  getEnvDuration("STREAM_KEEPALIVE", 10*time.Second),
			MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY", 1<<20)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("GENERATION_MODEL cannot be empty")
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("GENERATION_MAX_TOKENS must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.Stream.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
