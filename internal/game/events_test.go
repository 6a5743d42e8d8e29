package game

import (
	"testing"

	"github.com/lox/rockpaperscissors/rps"
	"github.com/stretchr/testify/assert"
)

func TestEventFormatter(t *testing.T) {
	t.Parallel()

	revealed := Snapshot{
		Mode:  ModeShuffle,
		Round: 4,
		State: ShowingResult{User: rps.Rock, Computer: rps.Paper, Result: rps.ComputerWins},
		Score: rps.Score{User: 1, Computer: 3},
	}
	revealing := Snapshot{Mode: ModeShuffle, Round: 4, State: Revealing{User: rps.Rock, Tick: 1}}

	tests := []struct {
		name     string
		opts     FormattingOptions
		event    GameEvent
		expected string
	}{
		{
			name:     "round started",
			event:    RoundStartedEvent{eventBase: eventBase{snapshot: revealing}, User: rps.Rock},
			expected: "#4 You pick Rock",
		},
		{
			name:     "tick with emoji",
			opts:     FormattingOptions{ShowEmoji: true},
			event:    ShuffleTickEvent{eventBase: eventBase{snapshot: revealing}, Tick: 1, Placeholder: rps.Paper},
			expected: "#4 Shuffling... ✋ Paper",
		},
		{
			name:     "revealed plain",
			event:    RoundRevealedEvent{eventBase: eventBase{snapshot: revealed}},
			expected: "#4 Rock vs Paper  Computer wins!",
		},
		{
			name:     "revealed with emoji and score",
			opts:     FormattingOptions{ShowEmoji: true, ShowScore: true},
			event:    RoundRevealedEvent{eventBase: eventBase{snapshot: revealed}},
			expected: "#4 ✊ Rock vs ✋ Paper  Computer wins!  (1-3)",
		},
		{
			name:     "cleared",
			event:    RoundClearedEvent{eventBase: eventBase{snapshot: Snapshot{Round: 4, State: Picking{}}}},
			expected: "#4 Next round",
		},
		{
			name:     "reset",
			event:    ScoreResetEvent{eventBase: eventBase{snapshot: Snapshot{Round: 4, State: Picking{}}}, Previous: rps.Score{User: 3, Computer: 2}},
			expected: "Score reset (was 3-2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewEventFormatter(tt.opts).Format(tt.event))
		})
	}
}

func TestEventFormatterFormatState(t *testing.T) {
	t.Parallel()

	ef := NewEventFormatter(FormattingOptions{})

	assert.Equal(t, "Score reset", ef.FormatState(EventTypeScoreReset, Snapshot{State: Picking{}}))
	// A snapshot that does not match the event falls back to the stage
	assert.Equal(t, "#2 picking", ef.FormatState(EventTypeRoundRevealed, Snapshot{Round: 2, State: Picking{}}))
}
