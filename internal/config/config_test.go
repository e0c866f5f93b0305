package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("INBUCKET_URL", "")
	t.Setenv("INBUCKET_TUI_STORE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.URL, cfg.Server.URL)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 500, cfg.Monitor.MaxMessages)
}

func TestLoadParsesYAML(t *testing.T) {
	t.Setenv("INBUCKET_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  url: http://mail.test:9000
  timeout: 2s
store:
  backend: sqlite
monitor:
  max_messages: 50
logging:
  debug_mode: true
  categories:
    routing: false
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://mail.test:9000", cfg.Server.URL)
	assert.Equal(t, 2*time.Second, cfg.GetServerTimeout())
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "inbucket.session", cfg.Store.Key, "unset keys keep defaults")
	assert.Equal(t, 50, cfg.Monitor.MaxMessages)
	assert.True(t, cfg.Logging.IsCategoryEnabled("session"))
	assert.False(t, cfg.Logging.IsCategoryEnabled("routing"))
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("INBUCKET_URL", "")
	t.Setenv("INBUCKET_TUI_STORE", "")
	t.Setenv("INBUCKET_TUI_STATE_DIR", "")
	t.Setenv("INBUCKET_TUI_DEBUG", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.UI.Greeting = "# Hello"
	cfg.Logging.Categories = map[string]bool{"ui": true}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 10*time.Second, cfg.GetServerTimeout())
	assert.Equal(t, time.Second, cfg.GetPollInterval())
	assert.Equal(t, 30*time.Second, cfg.GetMailboxRefresh())
	assert.Equal(t, 10*time.Second, cfg.GetStatusRefresh())
	assert.Equal(t, 3*time.Second, cfg.GetReconnectDelay())

	cfg.Status.RefreshInterval = "-5s"
	assert.Equal(t, 10*time.Second, cfg.GetStatusRefresh())
}

func TestLoggingCategoryDisabledWithoutDebug(t *testing.T) {
	lc := LoggingConfig{Categories: map[string]bool{"routing": true}}
	assert.False(t, lc.IsCategoryEnabled("routing"))
}
