package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/rockpaperscissors/internal/game"
)

// EnvPrefix is prepended to every environment override, e.g. RPS_PORT.
const EnvPrefix = "RPS_"

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings  `hcl:"server,block"`
	Timing *TimingSettings `hcl:"timing,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional" env:"ADDRESS"`
	Port     int    `hcl:"port,optional" env:"PORT"`
	LogLevel string `hcl:"log_level,optional" env:"LOG_LEVEL"`
	Mode     string `hcl:"mode,optional" env:"MODE"`
}

// TimingSettings contains the shuffle mode delays in milliseconds
type TimingSettings struct {
	TickIntervalMs int `hcl:"tick_interval_ms,optional" env:"TICK_INTERVAL_MS"`
	RevealDelayMs  int `hcl:"reveal_delay_ms,optional" env:"REVEAL_DELAY_MS"`
	ResetDelayMs   int `hcl:"reset_delay_ms,optional" env:"RESET_DELAY_MS"`
}

// Config is the runtime configuration handed to NewServer
type Config struct {
	Mode   game.Mode
	Timing game.Timing
}

// DefaultConfig returns the runtime defaults
func DefaultConfig() Config {
	return Config{
		Mode:   game.ModeShuffle,
		Timing: game.DefaultTiming(),
	}
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	timing := game.DefaultTiming()
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			Mode:     string(game.ModeShuffle),
		},
		Timing: &TimingSettings{
			TickIntervalMs: int(timing.TickInterval / time.Millisecond),
			RevealDelayMs:  int(timing.RevealDelay / time.Millisecond),
			ResetDelayMs:   int(timing.ResetDelay / time.Millisecond),
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}
	if c.Server.Mode == "" {
		c.Server.Mode = defaults.Server.Mode
	}

	if c.Timing == nil {
		c.Timing = defaults.Timing
		return
	}
	if c.Timing.TickIntervalMs == 0 {
		c.Timing.TickIntervalMs = defaults.Timing.TickIntervalMs
	}
	if c.Timing.RevealDelayMs == 0 {
		c.Timing.RevealDelayMs = defaults.Timing.RevealDelayMs
	}
	if c.Timing.ResetDelayMs == 0 {
		c.Timing.ResetDelayMs = defaults.Timing.ResetDelayMs
	}
}

// ApplyEnv overrides settings from RPS_* variables. A nil environ reads the
// process environment.
func (c *ServerConfig) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}

	if err := env.ParseWithOptions(&c.Server, opts); err != nil {
		return fmt.Errorf("server settings from environment: %w", err)
	}
	if c.Timing == nil {
		c.Timing = DefaultServerConfig().Timing
	}
	if err := env.ParseWithOptions(c.Timing, opts); err != nil {
		return fmt.Errorf("timing settings from environment: %w", err)
	}
	return nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if _, err := game.ParseMode(c.Server.Mode); err != nil {
		return err
	}

	if c.Timing == nil {
		return fmt.Errorf("timing settings missing")
	}
	if err := c.GameTiming().Validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameTiming converts the millisecond settings into game.Timing
func (c *ServerConfig) GameTiming() game.Timing {
	if c.Timing == nil {
		return game.DefaultTiming()
	}
	return game.Timing{
		TickInterval: time.Duration(c.Timing.TickIntervalMs) * time.Millisecond,
		RevealDelay:  time.Duration(c.Timing.RevealDelayMs) * time.Millisecond,
		ResetDelay:   time.Duration(c.Timing.ResetDelayMs) * time.Millisecond,
	}
}

// Runtime converts a validated file configuration into a Config
func (c *ServerConfig) Runtime() (Config, error) {
	mode, err := game.ParseMode(c.Server.Mode)
	if err != nil {
		return Config{}, err
	}
	return Config{Mode: mode, Timing: c.GameTiming()}, nil
}
