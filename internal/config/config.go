package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all inbucket-tui configuration.
type Config struct {
	// Server is the Inbucket instance the client talks to
	Server ServerConfig `yaml:"server"`

	// Store selects where the session record is persisted
	Store StoreConfig `yaml:"store"`

	// Page behavior
	Mailbox MailboxConfig `yaml:"mailbox"`
	Monitor MonitorConfig `yaml:"monitor"`
	Status  StatusConfig  `yaml:"status"`

	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the Inbucket REST and websocket endpoints.
type ServerConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// StoreConfig configures the session store backend.
type StoreConfig struct {
	Backend      string `yaml:"backend"` // file, sqlite, sqlite-pure, memory
	Dir          string `yaml:"dir"`     // state directory; logs live here too
	Key          string `yaml:"key"`
	PollInterval string `yaml:"poll_interval"` // sqlite change polling
}

// MailboxConfig configures the mailbox page.
type MailboxConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
}

// MonitorConfig configures the live monitor page and its socket.
type MonitorConfig struct {
	ReconnectDelay string `yaml:"reconnect_delay"`
	MaxMessages    int    `yaml:"max_messages"`
}

// StatusConfig configures the status page.
type StatusConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
}

// UIConfig configures presentation.
type UIConfig struct {
	// Greeting overrides the server greeting on the home page (markdown)
	Greeting string `yaml:"greeting,omitempty"`
	DarkMode bool   `yaml:"dark_mode"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:9000",
			Timeout: "10s",
		},
		Store: StoreConfig{
			Backend:      "file",
			Dir:          DefaultStateDir(),
			Key:          "inbucket.session",
			PollInterval: "1s",
		},
		Mailbox: MailboxConfig{
			RefreshInterval: "30s",
		},
		Monitor: MonitorConfig{
			ReconnectDelay: "3s",
			MaxMessages:    500,
		},
		Status: StatusConfig{
			RefreshInterval: "10s",
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".inbucket-tui", "config.yaml")
	}
	return filepath.Join(dir, "inbucket-tui", "config.yaml")
}

// DefaultStateDir returns the per-user state directory.
func DefaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".inbucket-tui"
	}
	return filepath.Join(dir, "inbucket-tui", "state")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("INBUCKET_URL"); url != "" {
		c.Server.URL = url
	}
	if backend := os.Getenv("INBUCKET_TUI_STORE"); backend != "" {
		c.Store.Backend = backend
	}
	if dir := os.Getenv("INBUCKET_TUI_STATE_DIR"); dir != "" {
		c.Store.Dir = dir
	}
	if debug := os.Getenv("INBUCKET_TUI_DEBUG"); debug != "" {
		switch strings.ToLower(debug) {
		case "1", "true", "yes", "on":
			c.Logging.DebugMode = true
		default:
			c.Logging.DebugMode = false
		}
	}
}

// GetServerTimeout returns the HTTP timeout as a duration.
func (c *Config) GetServerTimeout() time.Duration {
	return parseDuration(c.Server.Timeout, 10*time.Second)
}

// GetPollInterval returns the store polling interval as a duration.
func (c *Config) GetPollInterval() time.Duration {
	return parseDuration(c.Store.PollInterval, time.Second)
}

// GetMailboxRefresh returns the mailbox refresh interval as a duration.
func (c *Config) GetMailboxRefresh() time.Duration {
	return parseDuration(c.Mailbox.RefreshInterval, 30*time.Second)
}

// GetStatusRefresh returns the status refresh interval as a duration.
func (c *Config) GetStatusRefresh() time.Duration {
	return parseDuration(c.Status.RefreshInterval, 10*time.Second)
}

// GetReconnectDelay returns the monitor reconnect delay as a duration.
func (c *Config) GetReconnectDelay() time.Duration {
	return parseDuration(c.Monitor.ReconnectDelay, 3*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
