package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Aggregator.BaseURL = "https://agg.example.com"
	cfg.Admin.Addr = ":9184"

	path := filepath.Join(t.TempDir(), "finwatch.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Aggregator.BaseURL, got.Aggregator.BaseURL)
	assert.Equal(t, cfg.Aggregator.WindowDays, got.Aggregator.WindowDays)
	assert.Equal(t, cfg.Slack.BotTokenFile, got.Slack.BotTokenFile)
	assert.Equal(t, cfg.Store.DBPath, got.Store.DBPath)
	assert.Equal(t, cfg.Notify.PollSeconds, got.Notify.PollSeconds)
	assert.Equal(t, cfg.Notify.ChunkSize, got.Notify.ChunkSize)
	assert.Equal(t, ":9184", got.Admin.Addr)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 14, cfg.Aggregator.WindowDays)
	assert.Equal(t, 1800, cfg.Notify.PollSeconds)
	assert.Equal(t, 30*time.Minute, cfg.Notify.Interval())
	assert.Equal(t, 50, cfg.Notify.ChunkSize)
	assert.Equal(t, 3000, cfg.Notify.FallbackLimit)
	assert.Equal(t, "config/txns.db", cfg.Store.DBPath)
	assert.Empty(t, cfg.Admin.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadKeepsDefaultsForUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finwatch.yaml")
	partial := "aggregator:\n  base_url: https://agg.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://agg.example.com", cfg.Aggregator.BaseURL)
	assert.Equal(t, 50, cfg.Notify.ChunkSize)
	assert.Equal(t, 1800, cfg.Notify.PollSeconds)
	assert.Equal(t, 30*time.Minute, cfg.Notify.Interval())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(path, []byte("xoxb-12345\n"), 0o600))

	secret, err := ReadSecret(path)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-12345", secret)
}

func TestReadSecretEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := ReadSecret(path)
	require.Error(t, err)
}
