package game

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round lifecycle events
const (
	EventTypeRoundStarted  EventType = "round_started"
	EventTypeShuffleTick   EventType = "shuffle_tick"
	EventTypeRoundRevealed EventType = "round_revealed"
	EventTypeRoundCleared  EventType = "round_cleared"
	EventTypeScoreReset    EventType = "score_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}
