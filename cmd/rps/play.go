package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/rockpaperscissors/cmd/rps/shared"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/internal/randutil"
	"github.com/lox/rockpaperscissors/internal/tui"
	"github.com/lox/rockpaperscissors/rps"
)

// PlayCmd runs a local game in the terminal
type PlayCmd struct {
	Mode     string `enum:"instant,shuffle" default:"shuffle" help:"Game mode"`
	Seed     *int64 `help:"Deterministic RNG seed for the computer's picks (optional)"`
	TickMs   int    `name:"tick-ms" default:"100" help:"Shuffle tick interval in milliseconds"`
	RevealMs int    `name:"reveal-ms" default:"1000" help:"Delay before the reveal in milliseconds"`
	ResetMs  int    `name:"reset-ms" default:"2000" help:"Delay before the next round in milliseconds"`
	History  int    `default:"50" help:"Rounds kept in the history pane"`
	LogLevel string `default:"warn" help:"Log level"`
	LogFile  string `default:"rps-play.log" help:"Log file path"`
}

func (c *PlayCmd) Run() error {
	mode, err := game.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	timing := game.Timing{
		TickInterval: time.Duration(c.TickMs) * time.Millisecond,
		RevealDelay:  time.Duration(c.RevealMs) * time.Millisecond,
		ResetDelay:   time.Duration(c.ResetMs) * time.Millisecond,
	}
	if err := timing.Validate(); err != nil {
		return fmt.Errorf("invalid timing: %w", err)
	}

	logger, closeLog, err := shared.SetupFileLogger(c.LogLevel, c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	rng, seed := randutil.New(c.Seed)
	logger.Info("Starting local game", "mode", mode, "seed", seed)

	session := game.NewSession(
		game.WithMode(mode),
		game.WithTiming(timing),
		game.WithPicker(rps.NewRandomPicker(rng)),
		game.WithLogger(logger),
	)
	defer session.Close()

	model := tui.NewTUIModel(session, session.Snapshot(), logger,
		tui.WithTitle("Rock Paper Scissors"),
		tui.WithHistoryLimit(c.History),
	)
	program := tea.NewProgram(model, tea.WithAltScreen())
	session.Subscribe(tui.NewSessionBridge(program))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	snap := session.Snapshot()
	fmt.Printf("Final score after %d rounds: %s\n", snap.Round, snap.Score)
	return nil
}
