package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, parsed from the environment.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// OpenAIAPIKey is required; startup fails without it.
	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`
	ModelName    string  `env:"MODEL_NAME" envDefault:"gpt-4o-mini"`
	Temperature  float64 `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens    int     `env:"MAX_TOKENS" envDefault:"500"`

	// DataDir holds the database, prompt templates, and adventure logs.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`
}

// Load parses configuration from the environment and validates required
// settings.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return cfg, nil
}

// DBPath is the SQLite database file under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "game.db")
}

// PromptsDir holds the editable prompt template files.
func (c *Config) PromptsDir() string {
	return filepath.Join(c.DataDir, "prompts")
}

// LogsDir holds exported adventure transcripts.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// SlogLevel converts the configured log level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
