package game

import "github.com/lox/rockpaperscissors/rps"

// Stage names the variant of State on the wire and in logs
type Stage string

const (
	StagePicking       Stage = "picking"
	StageRevealing     Stage = "revealing"
	StageShowingResult Stage = "showing-result"
)

func (s Stage) String() string { return string(s) }

// State is the current round. Exactly one of Picking, Revealing and
// ShowingResult; per-round fields live only inside the variant that needs them.
type State interface {
	Stage() Stage
	isState()
}

// Picking waits for the user's sign.
type Picking struct{}

// Revealing is the shuffle animation. Tick counts cosmetic ticks since the
// round started.
type Revealing struct {
	User rps.Choice
	Tick int
}

// ShowingResult holds a decided round.
type ShowingResult struct {
	User     rps.Choice
	Computer rps.Choice
	Result   rps.Result
}

// ShuffleCycle is the placeholder sequence shown while revealing.
var ShuffleCycle = [...]rps.Choice{rps.Rock, rps.Paper, rps.Scissors}

func (Picking) Stage() Stage       { return StagePicking }
func (Revealing) Stage() Stage     { return StageRevealing }
func (ShowingResult) Stage() Stage { return StageShowingResult }

func (Picking) isState()       {}
func (Revealing) isState()     {}
func (ShowingResult) isState() {}

// Placeholder returns the sign to display for the current tick
func (r Revealing) Placeholder() rps.Choice {
	return ShuffleCycle[r.Tick%len(ShuffleCycle)]
}

// Snapshot is a consistent copy of a session's observable state.
type Snapshot struct {
	Mode  Mode
	Round uint64
	State State
	Score rps.Score
}

// Stage is shorthand for s.State.Stage()
func (s Snapshot) Stage() Stage {
	return s.State.Stage()
}
