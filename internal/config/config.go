package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level finwatch.yaml configuration.
type Config struct {
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Slack      SlackConfig      `yaml:"slack"`
	Store      StoreConfig      `yaml:"store"`
	Notify     NotifyConfig     `yaml:"notify"`
	Admin      AdminConfig      `yaml:"admin"`
	Log        LogConfig        `yaml:"log"`
}

// AggregatorConfig points at the financial-data aggregator API.
type AggregatorConfig struct {
	BaseURL   string `yaml:"base_url"`
	TokenFile string `yaml:"token_file"`
	// WindowDays is how far back each transaction fetch reaches. The
	// overlap is what lets pending transactions settle.
	WindowDays int `yaml:"window_days"`
}

// SlackConfig holds the bot and app-level token locations. Tokens live in
// files, not in the config, so the config can be committed.
type SlackConfig struct {
	BotTokenFile string `yaml:"bot_token_file"`
	AppTokenFile string `yaml:"app_token_file"`
}

// StoreConfig locates the durable transaction store.
type StoreConfig struct {
	DBPath string `yaml:"db_path"`
	// AuditLogPath is the CSV log of dispatched notifications. Empty
	// disables audit logging.
	AuditLogPath string `yaml:"audit_log_path"`
}

// NotifyConfig controls the notifier loop.
type NotifyConfig struct {
	PollSeconds   int `yaml:"poll_seconds"`
	ChunkSize     int `yaml:"chunk_size"`
	FallbackLimit int `yaml:"fallback_limit"`
}

// Interval returns the poll interval as a duration.
func (n NotifyConfig) Interval() time.Duration {
	return time.Duration(n.PollSeconds) * time.Second
}

// AdminConfig controls the admin HTTP listener (health + metrics).
type AdminConfig struct {
	// Addr like ":9184". Empty disables the listener.
	Addr string `yaml:"addr"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Load reads a finwatch.yaml file from disk and applies defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the stock settings: a 14-day fetch window,
// 30-minute polling, Slack's 50-block and 3000-char message limits.
func Default() *Config {
	return &Config{
		Aggregator: AggregatorConfig{
			TokenFile:  "secrets/aggregator_token.txt",
			WindowDays: 14,
		},
		Slack: SlackConfig{
			BotTokenFile: "secrets/slack_bot_token.txt",
			AppTokenFile: "secrets/slack_app_token.txt",
		},
		Store: StoreConfig{
			DBPath:       "config/txns.db",
			AuditLogPath: "logs/notifications.csv",
		},
		Notify: NotifyConfig{
			PollSeconds:   1800,
			ChunkSize:     50,
			FallbackLimit: 3000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ReadSecret reads a token from a secret file, trimming surrounding
// whitespace (the files typically end in a newline).
func ReadSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading secret %s: %w", path, err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return secret, nil
}
