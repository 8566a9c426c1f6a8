package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"prod"`
	Port     string `envconfig:"PORT" default:"8081"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	DatabaseDSN         string `envconfig:"DATABASE_DSN" required:"true"`

	// An empty MongoURI disables the legacy mirror.
	MongoURI        string `envconfig:"MONGO_URI"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"legacy"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"courses"`
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// LegacyEnabled reports whether purchases are mirrored to the legacy store.
func (c Config) LegacyEnabled() bool {
	return c.MongoURI != ""
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if strings.TrimSpace(cfg.StripeWebhookSecret) == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET must not be blank")
	}
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, errors.New("DATABASE_DSN must not be blank")
	}
	return &cfg, nil
}
