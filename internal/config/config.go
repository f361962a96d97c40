package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int `envconfig:"PORT" default:"3000"`

	// SigningSecret verifies inbound Slack request signatures.
	SigningSecret string `envconfig:"SLACK_SIGNING_SECRET" required:"true"`

	// BotToken authenticates outbound Slack Web API calls.
	BotToken string `envconfig:"SLACK_BOT_OAUTH_TOKEN" required:"true"`

	// DatabasePath is the SQLite file backing the preference store.
	DatabasePath string `envconfig:"DATABASE_PATH" default:"timepheus.db"`

	// ReactionEmoji is the marker reaction used for opted-out users and as
	// the "convert for me" trigger.
	ReactionEmoji string `envconfig:"REACTION_EMOJI" default:"timepheus_clk"`
}

// Load reads configuration from environment variables. Missing required
// secrets are fatal at startup, not at first use.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}
