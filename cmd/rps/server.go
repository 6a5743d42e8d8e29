package main

import (
	"fmt"
	"os"

	"github.com/lox/rockpaperscissors/cmd/rps/shared"
	"github.com/lox/rockpaperscissors/internal/randutil"
	"github.com/lox/rockpaperscissors/internal/server"
	"github.com/lox/rockpaperscissors/rps"
)

// ServerCmd runs the HTTP and WebSocket server
type ServerCmd struct {
	Config   string `short:"c" default:"rps-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `help:"Listen address, e.g. :8080 (overrides config)"`
	Mode     string `help:"Default game mode: instant or shuffle (overrides config)"`
	LogLevel string `help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for the computer's picks (optional)"`
	TickMs   int    `name:"tick-ms" help:"Shuffle tick interval in milliseconds (overrides config)"`
	RevealMs int    `name:"reveal-ms" help:"Delay before the reveal in milliseconds (overrides config)"`
	ResetMs  int    `name:"reset-ms" help:"Delay before the next round in milliseconds (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := c.loadConfig(nil)
	if err != nil {
		return err
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	runtime, err := cfg.Runtime()
	if err != nil {
		return err
	}

	rng, seed := randutil.New(c.Seed)
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Debug("Using random seed", "seed", seed)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	s := server.NewServer(logger,
		server.WithConfig(runtime),
		server.WithPicker(rps.NewRandomPicker(rng)),
	)

	logger.Info("Starting Rock Paper Scissors server",
		"address", addr,
		"mode", runtime.Mode,
		"tick", runtime.Timing.TickInterval,
		"reveal", runtime.Timing.RevealDelay,
		"reset", runtime.Timing.ResetDelay)

	ctx := shared.SetupSignalHandler(logger)
	return s.Run(ctx, addr)
}

// loadConfig layers the config file, then the environment, then flags. A
// nil environ reads the process environment.
func (c *ServerCmd) loadConfig(environ map[string]string) (*server.ServerConfig, error) {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}
	c.applyOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *ServerCmd) applyOverrides(cfg *server.ServerConfig) {
	if c.Mode != "" {
		cfg.Server.Mode = c.Mode
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.TickMs != 0 {
		cfg.Timing.TickIntervalMs = c.TickMs
	}
	if c.RevealMs != 0 {
		cfg.Timing.RevealDelayMs = c.RevealMs
	}
	if c.ResetMs != 0 {
		cfg.Timing.ResetDelayMs = c.ResetMs
	}
}
