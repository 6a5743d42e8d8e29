package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/rps"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type PickData struct {
	Choice string `json:"choice"`
}

// Server → Client Messages

type WelcomeData struct {
	SessionID      string `json:"sessionId"`
	Mode           string `json:"mode"`
	TickIntervalMs int64  `json:"tickIntervalMs"`
	RevealDelayMs  int64  `json:"revealDelayMs"`
	ResetDelayMs   int64  `json:"resetDelayMs"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ScoreData struct {
	User     int `json:"user"`
	Computer int `json:"computer"`
}

// StateData is everything the presentation layer needs to redraw. Fields
// that do not apply to the current stage are omitted.
type StateData struct {
	Event          string    `json:"event,omitempty"`
	Round          uint64    `json:"round"`
	Mode           string    `json:"mode"`
	Stage          string    `json:"stage"`
	UserChoice     string    `json:"userChoice,omitempty"`
	ComputerChoice string    `json:"computerChoice,omitempty"`
	Placeholder    string    `json:"placeholder,omitempty"`
	Tick           int       `json:"tick,omitempty"`
	Result         string    `json:"result,omitempty"`
	Message        string    `json:"message,omitempty"`
	Score          ScoreData `json:"score"`
}

func NewWelcomeData(sessionID string, mode game.Mode, timing game.Timing) WelcomeData {
	return WelcomeData{
		SessionID:      sessionID,
		Mode:           mode.String(),
		TickIntervalMs: timing.TickInterval.Milliseconds(),
		RevealDelayMs:  timing.RevealDelay.Milliseconds(),
		ResetDelayMs:   timing.ResetDelay.Milliseconds(),
	}
}

// StateFromSnapshot flattens a session snapshot for the wire
func StateFromSnapshot(snap game.Snapshot) StateData {
	data := StateData{
		Round: snap.Round,
		Mode:  snap.Mode.String(),
		Stage: snap.Stage().String(),
		Score: ScoreData{User: snap.Score.User, Computer: snap.Score.Computer},
	}

	switch st := snap.State.(type) {
	case game.Revealing:
		data.UserChoice = st.User.String()
		data.Placeholder = st.Placeholder().String()
		data.Tick = st.Tick
	case game.ShowingResult:
		data.UserChoice = st.User.String()
		data.ComputerChoice = st.Computer.String()
		data.Result = st.Result.String()
		data.Message = st.Result.Message()
	}

	return data
}

// StateFromEvent is StateFromSnapshot tagged with the event that produced it
func StateFromEvent(event game.GameEvent) StateData {
	data := StateFromSnapshot(event.Snapshot())
	data.Event = event.EventType().String()
	return data
}

// SnapshotFromState rebuilds a snapshot from the wire form. Clients use it
// to drive the same renderers as a local session.
func SnapshotFromState(data StateData) (game.Snapshot, error) {
	mode, err := game.ParseMode(data.Mode)
	if err != nil {
		return game.Snapshot{}, err
	}

	snap := game.Snapshot{
		Mode:  mode,
		Round: data.Round,
		Score: rps.Score{User: data.Score.User, Computer: data.Score.Computer},
	}

	switch game.Stage(data.Stage) {
	case game.StagePicking:
		snap.State = game.Picking{}
	case game.StageRevealing:
		user, err := rps.ParseChoice(data.UserChoice)
		if err != nil {
			return game.Snapshot{}, fmt.Errorf("revealing user choice: %w", err)
		}
		snap.State = game.Revealing{User: user, Tick: data.Tick}
	case game.StageShowingResult:
		user, err := rps.ParseChoice(data.UserChoice)
		if err != nil {
			return game.Snapshot{}, fmt.Errorf("result user choice: %w", err)
		}
		computer, err := rps.ParseChoice(data.ComputerChoice)
		if err != nil {
			return game.Snapshot{}, fmt.Errorf("result computer choice: %w", err)
		}
		snap.State = game.ShowingResult{User: user, Computer: computer, Result: rps.Decide(user, computer)}
	default:
		return game.Snapshot{}, fmt.Errorf("unknown stage %q", data.Stage)
	}

	return snap, nil
}
