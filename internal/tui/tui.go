package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/rps"
)

const defaultHistoryLimit = 50

// Backend accepts the player's input. A local game.Session and a network
// client.Client both satisfy it.
type Backend interface {
	Pick(choice rps.Choice) error
	Reset() error
}

// StateMsg carries a new snapshot into the model
type StateMsg struct {
	Event    game.EventType
	Snapshot game.Snapshot
}

// ErrMsg reports input the backend rejected
type ErrMsg struct {
	Err error
}

// DisconnectedMsg tells the model the backend went away
type DisconnectedMsg struct{}

// TUIModel is the Bubble Tea model for a rock paper scissors game
type TUIModel struct {
	backend   Backend
	logger    *log.Logger
	title     string
	formatter *game.EventFormatter

	// UI components
	history viewport.Model
	help    help.Model
	keys    keyMap

	// State
	snapshot     game.Snapshot
	historyLog   []string
	historyLimit int
	errText      string
	disconnected bool
	quitting     bool

	// Dimensions
	width  int
	height int

	// Test mode
	testMode    bool
	capturedLog []string
}

// Option configures a TUIModel
type Option func(*TUIModel)

// WithTitle sets the header text
func WithTitle(title string) Option {
	return func(m *TUIModel) { m.title = title }
}

// WithHistoryLimit caps the number of rounds kept in the history pane
func WithHistoryLimit(limit int) Option {
	return func(m *TUIModel) {
		if limit > 0 {
			m.historyLimit = limit
		}
	}
}

// WithTestMode captures history entries and skips viewport updates
func WithTestMode() Option {
	return func(m *TUIModel) { m.testMode = true }
}

// NewTUIModel creates a model that sends input to backend and starts from
// initial
func NewTUIModel(backend Backend, initial game.Snapshot, logger *log.Logger, opts ...Option) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	if initial.State == nil {
		initial.State = game.Picking{}
	}

	m := &TUIModel{
		backend:      backend,
		logger:       logger.WithPrefix("tui"),
		title:        "Rock Paper Scissors",
		history:      vp,
		formatter:    game.NewEventFormatter(game.FormattingOptions{ShowEmoji: true, ShowScore: true}),
		help:         help.New(),
		keys:         defaultKeyMap(),
		snapshot:     initial,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		return m, nil

	case StateMsg:
		m.applyState(msg)
		return m, nil

	case ErrMsg:
		m.errText = describeError(msg.Err)
		m.logger.Debug("Input rejected", "error", msg.Err)
		return m, nil

	case DisconnectedMsg:
		m.disconnected = true
		m.errText = "Disconnected from server"
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			return m, m.resetCmd()
		case key.Matches(msg, m.keys.Up):
			m.history.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.history.ScrollDown(1)
			return m, nil
		}
		if choice, ok := m.keys.choiceFor(msg); ok {
			return m, m.pickCmd(choice)
		}
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

// pickCmd runs the pick off the update loop; the backend may block on the
// session while it publishes to the program.
func (m *TUIModel) pickCmd(choice rps.Choice) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		if err := backend.Pick(choice); err != nil {
			return ErrMsg{Err: err}
		}
		return nil
	}
}

func (m *TUIModel) resetCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		if err := backend.Reset(); err != nil {
			return ErrMsg{Err: err}
		}
		return nil
	}
}

func (m *TUIModel) applyState(msg StateMsg) {
	m.snapshot = msg.Snapshot
	m.errText = ""

	if msg.Event == game.EventTypeRoundRevealed || msg.Event == game.EventTypeScoreReset {
		m.AddHistoryEntry(m.formatter.FormatState(msg.Event, msg.Snapshot))
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, game.ErrRoundInProgress):
		return "Wait for the round to finish"
	case errors.Is(err, game.ErrSessionClosed):
		return "Game over: session closed"
	default:
		return err.Error()
	}
}

// AddHistoryEntry appends a line to the round history, dropping the oldest
// beyond the limit
func (m *TUIModel) AddHistoryEntry(entry string) {
	m.historyLog = append(m.historyLog, entry)
	if over := len(m.historyLog) - m.historyLimit; over > 0 {
		m.historyLog = m.historyLog[over:]
	}

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.history.SetContent(strings.Join(m.historyLog, "\n"))
	if m.history.Height > 0 && m.history.Width > 0 {
		m.history.GotoBottom()
	}
}

// Snapshot returns the last state the model rendered
func (m *TUIModel) Snapshot() game.Snapshot {
	return m.snapshot
}

// History returns the retained history lines
func (m *TUIModel) History() []string {
	result := make([]string, len(m.historyLog))
	copy(result, m.historyLog)
	return result
}

// GetCapturedLog returns every history entry ever added (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	body := m.renderGamePane()

	width := m.width - 2
	if width < lipgloss.Width(body) {
		width = lipgloss.Width(body)
	}
	gamePane := PaneStyle.Width(width).Render(body)

	historyHeight := m.height - lipgloss.Height(gamePane) - 4
	if historyHeight < 3 {
		historyHeight = 3
	}
	m.history.Width = width
	m.history.Height = historyHeight

	historyPane := PaneStyle.Width(width).Render(
		InfoStyle.Render("History") + "\n" + m.history.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		gamePane,
		historyPane,
		m.help.View(m.keys),
	)
}

func (m *TUIModel) renderGamePane() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(m.title))
	b.WriteString(" ")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("mode: %s", m.snapshot.Mode)))
	b.WriteString("\n\n")

	b.WriteString(m.renderChoices())
	b.WriteString("\n\n")

	b.WriteString(VersusStyle.Render(RenderVersus(m.snapshot.State)))
	b.WriteString("\n")
	b.WriteString(renderResult(m.snapshot.State))
	b.WriteString("\n\n")

	b.WriteString(ScoreStyle.Render(m.snapshot.Score.String()))

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.errText))
	}

	return b.String()
}

func (m *TUIModel) renderChoices() string {
	selected, hasSelection := userChoice(m.snapshot.State)
	keys := []string{"r", "p", "s"}

	parts := make([]string, 0, len(rps.Choices))
	for i, c := range rps.Choices {
		label := fmt.Sprintf("[%s] %s %s", keys[i], c.Emoji(), c.Title())
		if hasSelection && c == selected {
			parts = append(parts, SelectedChoiceStyle.Render(label))
		} else {
			parts = append(parts, ChoiceStyle.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func userChoice(state game.State) (rps.Choice, bool) {
	switch st := state.(type) {
	case game.Revealing:
		return st.User, true
	case game.ShowingResult:
		return st.User, true
	}
	return 0, false
}

// RenderVersus returns the "you vs computer" line for state
func RenderVersus(state game.State) string {
	switch st := state.(type) {
	case game.Revealing:
		return fmt.Sprintf("%s vs %s", st.User.Emoji(), st.Placeholder().Emoji())
	case game.ShowingResult:
		return fmt.Sprintf("%s vs %s", st.User.Emoji(), st.Computer.Emoji())
	default:
		return "Pick your move"
	}
}

func renderResult(state game.State) string {
	switch st := state.(type) {
	case game.Revealing:
		return InfoStyle.Render("Shuffling...")
	case game.ShowingResult:
		return resultStyle(st.Result).Render(st.Result.Message())
	}
	return ""
}

func resultStyle(r rps.Result) lipgloss.Style {
	switch r {
	case rps.UserWins:
		return SuccessStyle
	case rps.ComputerWins:
		return ErrorStyle
	default:
		return WarningStyle
	}
}
