package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/rockpaperscissors/cmd/rps/shared"
	"github.com/lox/rockpaperscissors/internal/client"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/internal/tui"
)

// ClientCmd plays against a running server from the terminal
type ClientCmd struct {
	Config   string `short:"c" default:"rps-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL to connect to (overrides config)"`
	Mode     string `help:"Game mode: instant or shuffle (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return err
	}

	// Apply command line overrides
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Mode != "" {
		cfg.Server.Mode = c.Mode
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := shared.SetupFileLogger(cfg.UI.LogLevel, cfg.UI.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("Starting client", "server", cfg.Server.URL, "mode", cfg.Server.Mode, "config", c.Config)

	wsClient := client.NewClient(cfg.Server.URL, logger)
	model := tui.NewTUIModel(wsClient, game.Snapshot{Mode: cfg.GetMode()}, logger,
		tui.WithTitle("Rock Paper Scissors (online)"),
		tui.WithHistoryLimit(cfg.UI.HistoryLimit),
	)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Handlers go in before Connect so the initial state reaches the model
	tui.BridgeClient(wsClient, program)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	defer cancel()
	if err := wsClient.Connect(ctx, cfg.GetMode()); err != nil {
		return err
	}
	defer func() { _ = wsClient.Disconnect() }()
	tui.WatchDisconnect(wsClient, program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
