package tui

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/rps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
}

type fakeBackend struct {
	mu      sync.Mutex
	picks   []rps.Choice
	resets  int
	pickErr error
}

func (b *fakeBackend) Pick(choice rps.Choice) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.picks = append(b.picks, choice)
	return b.pickErr
}

func (b *fakeBackend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resets++
	return nil
}

// collectingSender records messages sent by a bridge
type collectingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *collectingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *collectingSender) drain() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.msgs
	s.msgs = nil
	return msgs
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel(backend Backend, opts ...Option) *TUIModel {
	opts = append([]Option{WithTestMode()}, opts...)
	return NewTUIModel(backend, game.Snapshot{Mode: game.ModeShuffle}, testLogger(), opts...)
}

func TestKeysDriveBackend(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	m := newTestModel(backend)

	for _, r := range []rune{'r', 'p', 's', '1'} {
		_, cmd := m.Update(keyPress(r))
		require.NotNil(t, cmd, string(r))
		assert.Nil(t, cmd())
	}
	assert.Equal(t, []rps.Choice{rps.Rock, rps.Paper, rps.Scissors, rps.Rock}, backend.picks)

	_, cmd := m.Update(keyPress('x'))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, backend.resets)

	_, cmd = m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestRejectedPickShowsMessage(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{pickErr: fmt.Errorf("%w: stage revealing", game.ErrRoundInProgress)}
	m := newTestModel(backend)

	_, cmd := m.Update(keyPress('r'))
	msg := cmd()
	require.IsType(t, ErrMsg{}, msg)

	m.Update(msg)
	assert.Contains(t, m.View(), "Wait for the round to finish")

	// The next state clears the message
	m.Update(StateMsg{Snapshot: game.Snapshot{Mode: game.ModeShuffle, State: game.Picking{}}})
	assert.NotContains(t, m.View(), "Wait for the round to finish")

	m.Update(ErrMsg{Err: errors.New("boom")})
	assert.Contains(t, m.View(), "boom")
}

func TestViewRendersEachStage(t *testing.T) {
	t.Parallel()

	m := newTestModel(&fakeBackend{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	view := m.View()
	assert.Contains(t, view, "Pick your move")
	assert.Contains(t, view, "You 0 - 0 Computer")
	assert.Contains(t, view, "mode: shuffle")
	assert.Contains(t, view, "Rock")
	assert.Contains(t, view, "Scissors")

	m.Update(StateMsg{
		Event:    game.EventTypeShuffleTick,
		Snapshot: game.Snapshot{Mode: game.ModeShuffle, Round: 1, State: game.Revealing{User: rps.Rock, Tick: 1}},
	})
	view = m.View()
	assert.Contains(t, view, "✊ vs ✋")
	assert.Contains(t, view, "Shuffling...")

	m.Update(StateMsg{
		Event: game.EventTypeRoundRevealed,
		Snapshot: game.Snapshot{
			Mode:  game.ModeShuffle,
			Round: 1,
			State: game.ShowingResult{User: rps.Rock, Computer: rps.Scissors, Result: rps.UserWins},
			Score: rps.Score{User: 1},
		},
	})
	view = m.View()
	assert.Contains(t, view, "✊ vs ✌️")
	assert.Contains(t, view, "You win!")
	assert.Contains(t, view, "You 1 - 0 Computer")
}

func TestRenderVersus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Pick your move", RenderVersus(game.Picking{}))
	assert.Equal(t, "Pick your move", RenderVersus(nil))
	assert.Equal(t, "✋ vs ✊", RenderVersus(game.Revealing{User: rps.Paper}))
	assert.Equal(t, "✌️ vs ✋", RenderVersus(game.ShowingResult{User: rps.Scissors, Computer: rps.Paper, Result: rps.UserWins}))
}

func TestHistoryRecordsRevealsAndResets(t *testing.T) {
	t.Parallel()

	m := newTestModel(&fakeBackend{}, WithHistoryLimit(2))

	reveal := func(round uint64, user, computer rps.Choice, score rps.Score) {
		m.Update(StateMsg{
			Event: game.EventTypeRoundRevealed,
			Snapshot: game.Snapshot{
				Mode:  game.ModeInstant,
				Round: round,
				State: game.ShowingResult{User: user, Computer: computer, Result: rps.Decide(user, computer)},
				Score: score,
			},
		})
	}

	reveal(1, rps.Rock, rps.Scissors, rps.Score{User: 1})
	reveal(2, rps.Paper, rps.Paper, rps.Score{User: 1})
	m.Update(StateMsg{Event: game.EventTypeScoreReset, Snapshot: game.Snapshot{Mode: game.ModeInstant, Round: 2, State: game.Picking{}}})

	captured := m.GetCapturedLog()
	require.Len(t, captured, 3)
	assert.Equal(t, "#1 ✊ Rock vs ✌️ Scissors  You win!  (1-0)", captured[0])
	assert.Equal(t, "#2 ✋ Paper vs ✋ Paper  It's a tie!  (1-0)", captured[1])
	assert.Contains(t, captured[2], "Score reset")

	history := m.History()
	require.Len(t, history, 2, "history is capped")
	assert.Equal(t, captured[1], history[0])

	// Ticks and clears do not add history
	m.Update(StateMsg{Event: game.EventTypeRoundCleared, Snapshot: game.Snapshot{Mode: game.ModeInstant, State: game.Picking{}}})
	assert.Len(t, m.GetCapturedLog(), 3)
}

func TestProductionModeDoesNotCapture(t *testing.T) {
	t.Parallel()

	m := NewTUIModel(&fakeBackend{}, game.Snapshot{}, testLogger())
	m.AddHistoryEntry("entry")
	assert.Nil(t, m.GetCapturedLog())
	assert.Equal(t, []string{"entry"}, m.History())
	assert.Equal(t, game.Picking{}, m.Snapshot().State)
}

func TestSessionBridge(t *testing.T) {
	t.Parallel()

	sender := &collectingSender{}
	session := game.NewSession(
		game.WithMode(game.ModeInstant),
		game.WithPicker(rps.PickerFunc(func() rps.Choice { return rps.Paper })),
		game.WithSubscriber(NewSessionBridge(sender)),
	)
	defer session.Close()

	m := newTestModel(session)
	_, cmd := m.Update(keyPress('s'))
	assert.Nil(t, cmd())

	msgs := sender.drain()
	require.Len(t, msgs, 1)
	state, ok := msgs[0].(StateMsg)
	require.True(t, ok)
	assert.Equal(t, game.EventTypeRoundRevealed, state.Event)

	m.Update(state)
	assert.Equal(t, rps.Score{User: 1}, m.Snapshot().Score)
	assert.Contains(t, m.View(), "You win!")
	require.Len(t, m.GetCapturedLog(), 1)
}

func TestDisconnectedMsg(t *testing.T) {
	t.Parallel()

	m := newTestModel(&fakeBackend{})
	m.Update(DisconnectedMsg{})
	assert.Contains(t, m.View(), "Disconnected from server")
}
