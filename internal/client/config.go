package client

import (
	"fmt"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/rockpaperscissors/internal/game"
)

// EnvPrefix is prepended to every environment override, e.g. RPS_CLIENT_URL.
const EnvPrefix = "RPS_CLIENT_"

// ClientConfig represents the complete client configuration
type ClientConfig struct {
	Server ServerConnection `hcl:"server,block"`
	UI     UISettings       `hcl:"ui,block"`
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	URL            string `hcl:"url,optional" env:"URL"`
	Mode           string `hcl:"mode,optional" env:"MODE"`
	ConnectTimeout int    `hcl:"connect_timeout,optional" env:"CONNECT_TIMEOUT"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel     string `hcl:"log_level,optional" env:"LOG_LEVEL"`
	LogFile      string `hcl:"log_file,optional" env:"LOG_FILE"`
	HistoryLimit int    `hcl:"history_limit,optional" env:"HISTORY_LIMIT"`
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Server: ServerConnection{
			URL:            "http://localhost:8080",
			Mode:           string(game.ModeShuffle),
			ConnectTimeout: 10,
		},
		UI: UISettings{
			LogLevel:     "warn",
			LogFile:      "rps-client.log",
			HistoryLimit: 50,
		},
	}
}

// LoadClientConfig loads client configuration from HCL file
func LoadClientConfig(filename string) (*ClientConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultClientConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ClientConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	defaults := DefaultClientConfig()

	if config.Server.URL == "" {
		config.Server.URL = defaults.Server.URL
	}
	if config.Server.Mode == "" {
		config.Server.Mode = defaults.Server.Mode
	}
	if config.Server.ConnectTimeout == 0 {
		config.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if config.UI.LogLevel == "" {
		config.UI.LogLevel = defaults.UI.LogLevel
	}
	if config.UI.LogFile == "" {
		config.UI.LogFile = defaults.UI.LogFile
	}
	if config.UI.HistoryLimit == 0 {
		config.UI.HistoryLimit = defaults.UI.HistoryLimit
	}

	return &config, nil
}

// ApplyEnv overrides settings from RPS_CLIENT_* variables. A nil environ
// reads the process environment.
func (c *ClientConfig) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}

	if err := env.ParseWithOptions(&c.Server, opts); err != nil {
		return fmt.Errorf("server settings from environment: %w", err)
	}
	if err := env.ParseWithOptions(&c.UI, opts); err != nil {
		return fmt.Errorf("ui settings from environment: %w", err)
	}
	return nil
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}

	if _, err := game.ParseMode(c.Server.Mode); err != nil {
		return err
	}

	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if c.UI.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}

// GetMode returns the requested game mode
func (c *ClientConfig) GetMode() game.Mode {
	mode, err := game.ParseMode(c.Server.Mode)
	if err != nil {
		return game.ModeShuffle
	}
	return mode
}
