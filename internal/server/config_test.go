package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rps-server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
  mode      = "instant"
}

timing {
  tick_interval_ms = 50
  reveal_delay_ms  = 600
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	rt, err := cfg.Runtime()
	require.NoError(t, err)
	assert.Equal(t, game.ModeInstant, rt.Mode)
	assert.Equal(t, game.Timing{
		TickInterval: 50 * time.Millisecond,
		RevealDelay:  600 * time.Millisecond,
		ResetDelay:   2 * time.Second,
	}, rt.Timing)
}

func TestLoadServerConfigDefaultsTimingBlock(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  port = 9001
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTiming(), cfg.GameTiming())
	assert.Equal(t, "shuffle", cfg.Server.Mode)
	assert.Equal(t, "localhost", cfg.Server.Address)
}

func TestLoadServerConfigParseError(t *testing.T) {
	t.Parallel()

	_, err := LoadServerConfig(writeConfig(t, `server {`))
	require.Error(t, err)

	_, err = LoadServerConfig(writeConfig(t, `server { port = "many" }`))
	require.Error(t, err)
}

func TestServerConfigApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	err := cfg.ApplyEnv(map[string]string{
		"RPS_PORT":           "9999",
		"RPS_MODE":           "instant",
		"RPS_RESET_DELAY_MS": "3000",
		"UNRELATED_VARIABLE": "ignored",
		"PORT":               "1",
	})
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "instant", cfg.Server.Mode)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 3*time.Second, cfg.GameTiming().ResetDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.GameTiming().TickInterval)

	err = cfg.ApplyEnv(map[string]string{"RPS_PORT": "eighty"})
	require.Error(t, err)
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*ServerConfig)
	}{
		{"port too low", func(c *ServerConfig) { c.Server.Port = 0 }},
		{"port too high", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"log level", func(c *ServerConfig) { c.Server.LogLevel = "chatty" }},
		{"mode", func(c *ServerConfig) { c.Server.Mode = "blitz" }},
		{"missing timing", func(c *ServerConfig) { c.Timing = nil }},
		{"zero tick", func(c *ServerConfig) { c.Timing.TickIntervalMs = 0 }},
		{"reveal not longer than tick", func(c *ServerConfig) { c.Timing.RevealDelayMs = c.Timing.TickIntervalMs }},
		{"reset not longer than tick", func(c *ServerConfig) { c.Timing.ResetDelayMs = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
