package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "chatdm"

type Config struct {
	ServerAddr     string        `envconfig:"SERVER_ADDR" default:"localhost:8000"`
	DatabaseDSN    string        `envconfig:"DATABASE_DSN"`
	SigningSecret  string        `envconfig:"SIGNING_SECRET"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS"`
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT" default:"50"`
	TypingExpiry   time.Duration `envconfig:"TYPING_EXPIRY" default:"10s"`
	TokenExpiry    time.Duration `envconfig:"TOKEN_EXPIRY" default:"168h"`
	StaticDir      string        `envconfig:"STATIC_DIR"`

	// SigningKey is the decoded form of SigningSecret, populated by Finalize.
	SigningKey []byte `ignored:"true"`
}

// FromEnv loads configuration from CHATDM_* environment variables.
// Values may still be overridden by flags before calling Finalize.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	return &cfg, nil
}

// Finalize validates the config and decodes the base64 signing secret.
func (c *Config) Finalize() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}
	if c.SigningSecret == "" {
		return fmt.Errorf("signing secret cannot be empty")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive")
	}

	key, err := base64.StdEncoding.DecodeString(c.SigningSecret)
	if err != nil {
		return fmt.Errorf("decode signing secret: %w", err)
	}
	c.SigningKey = key

	return nil
}
