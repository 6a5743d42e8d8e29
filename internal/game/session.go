package game

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rockpaperscissors/rps"
)

var (
	// ErrRoundInProgress is returned by Pick while a shuffle round is running.
	// The session is left untouched.
	ErrRoundInProgress = errors.New("round in progress")
	// ErrSessionClosed is returned once Close has been called.
	ErrSessionClosed = errors.New("session closed")
)

// SessionOption configures a Session during creation.
type SessionOption func(*Session)

// WithMode selects instant or shuffle play. Default: ModeShuffle.
func WithMode(mode Mode) SessionOption {
	return func(s *Session) { s.mode = mode }
}

// WithTiming overrides the shuffle delays. Default: DefaultTiming(). Timing
// that fails Validate is replaced by the default.
func WithTiming(timing Timing) SessionOption {
	return func(s *Session) { s.timing = timing }
}

// WithClock injects the clock used for every timer. Default: quartz.NewReal().
func WithClock(clock quartz.Clock) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithPicker injects the computer's picker. Default: a RandomPicker on the
// global generator.
func WithPicker(picker rps.Picker) SessionOption {
	return func(s *Session) { s.picker = picker }
}

// WithLogger sets the parent logger
func WithLogger(logger *log.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSubscriber registers subscriber before the session is returned
func WithSubscriber(subscriber EventSubscriber) SessionOption {
	return func(s *Session) { s.bus.Subscribe(subscriber) }
}

// Session is one player's game against the computer.
//
// All input and timer callbacks serialize on the session mutex. Events are
// published while that mutex is held, so subscribers must not call back
// into the session.
type Session struct {
	mu     sync.Mutex
	mode   Mode
	timing Timing
	clock  quartz.Clock
	picker rps.Picker
	logger *log.Logger
	bus    *SimpleEventBus

	state  State
	score  rps.Score
	round  uint64
	sched  *schedule
	closed bool
}

// schedule owns the timers of one shuffle round. A callback whose schedule
// is no longer Session.sched is stale and does nothing.
type schedule struct {
	round      uint64
	tick       *quartz.Timer
	transition *quartz.Timer
}

func (sc *schedule) stop() {
	if sc.tick != nil {
		sc.tick.Stop()
		sc.tick = nil
	}
	if sc.transition != nil {
		sc.transition.Stop()
		sc.transition = nil
	}
}

// NewSession creates a session in Picking with a zero score
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		mode:   ModeShuffle,
		timing: DefaultTiming(),
		bus:    NewEventBus(),
		state:  Picking{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.picker == nil {
		s.picker = rps.NewRandomPicker(nil)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.WithPrefix("session").With("mode", s.mode)

	if err := s.timing.Validate(); err != nil {
		s.logger.Warn("Invalid timing, using defaults", "error", err)
		s.timing = DefaultTiming()
	}

	return s
}

// Mode returns the mode the session was created with
func (s *Session) Mode() Mode {
	return s.mode
}

// Timing returns the configured shuffle delays
func (s *Session) Timing() Timing {
	return s.timing
}

// Subscribe registers subscriber for future events and returns a function
// that removes it.
func (s *Session) Subscribe(subscriber EventSubscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	remove := s.bus.Subscribe(subscriber)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		remove()
	}
}

// Snapshot returns the current state and score
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Pick submits the user's sign.
//
// In shuffle mode it is only accepted in Picking; otherwise it returns
// ErrRoundInProgress and has no effect. In instant mode every pick is
// decided straight away.
func (s *Session) Pick(choice rps.Choice) error {
	if !choice.Valid() {
		return fmt.Errorf("pick: %w: %d", rps.ErrInvalidChoice, uint8(choice))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if s.mode == ModeInstant {
		s.playInstantLocked(choice)
		return nil
	}

	if _, ok := s.state.(Picking); !ok {
		s.logger.Debug("Ignoring pick", "round", s.round, "stage", s.state.Stage(), "choice", choice)
		return fmt.Errorf("%w: stage %s", ErrRoundInProgress, s.state.Stage())
	}

	s.startShuffleLocked(choice)
	return nil
}

// Reset cancels any running round, returns to Picking and zeroes the score
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	previous := s.score
	s.cancelScheduleLocked()
	s.state = Picking{}
	s.score.Reset()

	s.logger.Debug("Score reset", "round", s.round, "previousUser", previous.User, "previousComputer", previous.Computer)
	s.bus.Publish(ScoreResetEvent{eventBase: s.eventBaseLocked(), Previous: previous})
	return nil
}

// Close stops all timers and rejects further input. Subscribers are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelScheduleLocked()
	s.bus = NewEventBus()
	s.logger.Debug("Session closed", "rounds", s.round)
}

func (s *Session) playInstantLocked(choice rps.Choice) {
	s.cancelScheduleLocked()
	s.round++
	s.revealLocked(choice)
}

func (s *Session) startShuffleLocked(choice rps.Choice) {
	s.cancelScheduleLocked()
	s.round++

	sc := &schedule{round: s.round}
	s.sched = sc
	s.state = Revealing{User: choice}

	sc.tick = s.clock.AfterFunc(s.timing.TickInterval, func() { s.onTick(sc) }, "session", "tick")
	sc.transition = s.clock.AfterFunc(s.timing.RevealDelay, func() { s.onReveal(sc) }, "session", "reveal")

	s.logger.Debug("Round started", "round", s.round, "user", choice)
	s.bus.Publish(RoundStartedEvent{eventBase: s.eventBaseLocked(), User: choice})
}

func (s *Session) onTick(sc *schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != sc {
		return
	}
	rev, ok := s.state.(Revealing)
	if !ok {
		return
	}

	rev.Tick++
	s.state = rev
	sc.tick = s.clock.AfterFunc(s.timing.TickInterval, func() { s.onTick(sc) }, "session", "tick")

	s.bus.Publish(ShuffleTickEvent{eventBase: s.eventBaseLocked(), Tick: rev.Tick, Placeholder: rev.Placeholder()})
}

func (s *Session) onReveal(sc *schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != sc {
		s.logger.Debug("Dropping stale reveal", "round", sc.round, "current", s.round)
		return
	}
	rev, ok := s.state.(Revealing)
	if !ok {
		return
	}

	if sc.tick != nil {
		sc.tick.Stop()
		sc.tick = nil
	}
	sc.transition = nil

	s.revealLocked(rev.User)

	sc.transition = s.clock.AfterFunc(s.timing.ResetDelay, func() { s.onClear(sc) }, "session", "clear")
}

// revealLocked draws the computer's sign, decides, and updates the score.
// It is the only place the score is incremented.
func (s *Session) revealLocked(user rps.Choice) {
	computer := s.picker.Pick()
	result := rps.Decide(user, computer)
	s.score.Apply(result)
	s.state = ShowingResult{User: user, Computer: computer, Result: result}

	s.logger.Debug("Round revealed",
		"round", s.round,
		"user", user,
		"computer", computer,
		"result", result,
		"scoreUser", s.score.User,
		"scoreComputer", s.score.Computer)

	s.bus.Publish(RoundRevealedEvent{
		eventBase: s.eventBaseLocked(),
		User:      user,
		Computer:  computer,
		Result:    result,
	})
}

func (s *Session) onClear(sc *schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != sc {
		s.logger.Debug("Dropping stale clear", "round", sc.round, "current", s.round)
		return
	}
	if _, ok := s.state.(ShowingResult); !ok {
		return
	}

	sc.transition = nil
	s.sched = nil
	s.state = Picking{}

	s.logger.Debug("Round cleared", "round", s.round)
	s.bus.Publish(RoundClearedEvent{eventBase: s.eventBaseLocked()})
}

func (s *Session) cancelScheduleLocked() {
	if s.sched == nil {
		return
	}
	s.sched.stop()
	s.sched = nil
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:  s.mode,
		Round: s.round,
		State: s.state,
		Score: s.score,
	}
}

func (s *Session) eventBaseLocked() eventBase {
	return eventBase{snapshot: s.snapshotLocked(), timestamp: s.clock.Now()}
}
