package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch-dev/finwatch/internal/config"
)

func TestRunInitScaffolds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	for _, d := range []string{"secrets", "config", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(filepath.Join(dir, "finwatch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Aggregator.WindowDays)

	// Placeholder token files exist but are empty.
	data, err := os.ReadFile(filepath.Join(dir, cfg.Slack.BotTokenFile))
	require.NoError(t, err)
	assert.Empty(t, data)

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), "secrets/")
}

func TestRunInitIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	// Fill in a token, then re-init: the token must survive.
	tokenPath := filepath.Join(dir, "secrets", "slack_bot_token.txt")
	require.NoError(t, os.WriteFile(tokenPath, []byte("xoxb-keep"), 0o600))

	require.NoError(t, runInit(dir))
	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-keep", string(data))
}
