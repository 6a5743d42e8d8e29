package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/rockpaperscissors/rps"
)

type keyMap struct {
	Rock     key.Binding
	Paper    key.Binding
	Scissors key.Binding
	Reset    key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Rock: key.NewBinding(
			key.WithKeys("r", "1"),
			key.WithHelp("r", "rock"),
		),
		Paper: key.NewBinding(
			key.WithKeys("p", "2"),
			key.WithHelp("p", "paper"),
		),
		Scissors: key.NewBinding(
			key.WithKeys("s", "3"),
			key.WithHelp("s", "scissors"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset score"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// choiceFor returns the sign bound to a pick key
func (k keyMap) choiceFor(msg tea.KeyMsg) (rps.Choice, bool) {
	switch {
	case key.Matches(msg, k.Rock):
		return rps.Rock, true
	case key.Matches(msg, k.Paper):
		return rps.Paper, true
	case key.Matches(msg, k.Scissors):
		return rps.Scissors, true
	}
	return 0, false
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Rock, k.Paper, k.Scissors, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Rock, k.Paper, k.Scissors},
		{k.Reset, k.Up, k.Down, k.Quit},
	}
}
