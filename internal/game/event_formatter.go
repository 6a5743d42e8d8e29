package game

import (
	"fmt"

	"github.com/lox/rockpaperscissors/rps"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowEmoji bool // Prefix sign names with their glyph (for the TUI)
	ShowScore bool // Append the running score to revealed rounds
}

// EventFormatter renders round events as one-line history entries
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders event. Score resets include the score that was cleared.
func (ef *EventFormatter) Format(event GameEvent) string {
	if reset, ok := event.(ScoreResetEvent); ok {
		return fmt.Sprintf("Score reset (was %d-%d)", reset.Previous.User, reset.Previous.Computer)
	}
	return ef.FormatState(event.EventType(), event.Snapshot())
}

// FormatState renders the entry for eventType from the snapshot it produced.
// Remote clients only see snapshots, so everything but the cleared score of
// a reset is derived from snap.
func (ef *EventFormatter) FormatState(eventType EventType, snap Snapshot) string {
	switch eventType {
	case EventTypeRoundStarted:
		if rev, ok := snap.State.(Revealing); ok {
			return fmt.Sprintf("#%d You pick %s", snap.Round, ef.sign(rev.User))
		}
	case EventTypeShuffleTick:
		if rev, ok := snap.State.(Revealing); ok {
			return fmt.Sprintf("#%d Shuffling... %s", snap.Round, ef.sign(rev.Placeholder()))
		}
	case EventTypeRoundRevealed:
		if res, ok := snap.State.(ShowingResult); ok {
			return ef.FormatRound(snap.Round, res, snap.Score)
		}
	case EventTypeRoundCleared:
		return fmt.Sprintf("#%d Next round", snap.Round)
	case EventTypeScoreReset:
		return "Score reset"
	}
	return fmt.Sprintf("#%d %s", snap.Round, snap.Stage())
}

// FormatRound renders a decided round
func (ef *EventFormatter) FormatRound(round uint64, res ShowingResult, score rps.Score) string {
	line := fmt.Sprintf("#%d %s vs %s  %s", round, ef.sign(res.User), ef.sign(res.Computer), res.Result.Message())
	if ef.opts.ShowScore {
		line += fmt.Sprintf("  (%d-%d)", score.User, score.Computer)
	}
	return line
}

func (ef *EventFormatter) sign(c rps.Choice) string {
	if ef.opts.ShowEmoji {
		return c.Emoji() + " " + c.Title()
	}
	return c.Title()
}
