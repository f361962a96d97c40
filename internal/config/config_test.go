package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLACK_SIGNING_SECRET", "shh")
	t.Setenv("SLACK_BOT_OAUTH_TOKEN", "xoxb-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "timepheus.db", cfg.DatabasePath)
	assert.Equal(t, "timepheus_clk", cfg.ReactionEmoji)
	assert.Equal(t, "shh", cfg.SigningSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLACK_SIGNING_SECRET", "shh")
	t.Setenv("SLACK_BOT_OAUTH_TOKEN", "xoxb-test")
	t.Setenv("PORT", "8080")
	t.Setenv("REACTION_EMOJI", "clock3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "clock3", cfg.ReactionEmoji)
}

func TestLoadMissingSecretFails(t *testing.T) {
	// t.Setenv registers the restore; Unsetenv makes the key truly absent.
	t.Setenv("SLACK_SIGNING_SECRET", "shh")
	os.Unsetenv("SLACK_SIGNING_SECRET")
	t.Setenv("SLACK_BOT_OAUTH_TOKEN", "xoxb-test")

	_, err := Load()
	assert.Error(t, err)
}
