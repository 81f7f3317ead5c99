package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftpulse/notifier/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadNotifierConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
telegram:
  bot_token: "123:abc"
database:
  host: localhost
  dbname: notifier
`)

	cfg, err := config.LoadNotifierConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10*time.Minute, cfg.Dedup.Window)
	assert.Equal(t, 5*time.Minute, cfg.Dedup.SweepInterval)
	assert.Equal(t, 10, cfg.Imaging.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Imaging.RetryStep)
	assert.Equal(t, 60*time.Second, cfg.Imaging.CleanupDelay)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIBaseURL)
	assert.Equal(t, 20, cfg.Worker.PoolSize)
}

func TestLoadNotifierConfig_Overrides(t *testing.T) {
	path := writeConfigFile(t, `
debug: true
telegram:
  bot_token: "123:abc"
server:
  port: 9090
dedup:
  window: 20m
imaging:
  max_attempts: 3
marketplace:
  websocket_url: wss://stream.example.com/ws
  collections:
    - "0xabc"
    - "0xdef"
`)

	cfg, err := config.LoadNotifierConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 20*time.Minute, cfg.Dedup.Window)
	assert.Equal(t, 3, cfg.Imaging.MaxAttempts)
	assert.Equal(t, "wss://stream.example.com/ws", cfg.Marketplace.WebSocketURL)
	assert.Equal(t, []string{"0xabc", "0xdef"}, cfg.Marketplace.Collections)
}

func TestLoadNotifierConfig_MissingBotToken(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
`)

	_, err := config.LoadNotifierConfig(path, t.TempDir())
	assert.ErrorContains(t, err, "telegram.bot_token is required")
}

func TestLoadNotifierConfig_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
telegram:
  bot_token: "123:abc"
`)

	t.Setenv("NFTPULSE_SOLANA_SHARED_SECRET", "topsecret")
	t.Setenv("NFTPULSE_DATABASE_HOST", "db.internal")

	cfg, err := config.LoadNotifierConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "topsecret", cfg.Solana.SharedSecret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestDatabaseConfigDSN(t *testing.T) {
	c := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "notifier",
		Password: "secret",
		DBName:   "notifier",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=localhost port=5432 user=notifier password=secret dbname=notifier sslmode=disable", c.DSN())
}
