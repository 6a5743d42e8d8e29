// Package game sequences Rock-Paper-Scissors rounds for a single player.
//
// The main type is Session, which owns the current round State, the running
// rps.Score and every timer a round schedules. Two modes are supported:
//
//   - ModeInstant: a pick is decided immediately and the result stays on
//     screen until the next pick.
//   - ModeShuffle: a pick enters Revealing, a short repeating tick cycles a
//     placeholder sign, the computer's real sign is drawn after RevealDelay,
//     and the session returns to Picking after ResetDelay.
//
// # Basic Usage
//
//	s := game.NewSession(
//	    game.WithMode(game.ModeShuffle),
//	    game.WithLogger(logger),
//	)
//	s.Subscribe(subscriber) // receives RoundStartedEvent, RoundRevealedEvent, ...
//	if err := s.Pick(rps.Rock); errors.Is(err, game.ErrRoundInProgress) {
//	    // ignored, a round is already running
//	}
//
// # Deterministic Testing
//
// Inject a quartz mock clock and a fixed picker:
//
//	clock := quartz.NewMock(t)
//	s := game.NewSession(
//	    game.WithClock(clock),
//	    game.WithPicker(rps.PickerFunc(func() rps.Choice { return rps.Scissors })),
//	)
//	_ = s.Pick(rps.Rock)
//	_, w := clock.AdvanceNext()
//	w.MustWait(ctx)
//
// # Timers
//
// Each round owns one schedule holding at most one tick timer and one pending
// transition. Starting a new round, resetting or closing stops the schedule
// as a unit, and every callback re-checks that its schedule is still the
// current one before touching state.
package game
