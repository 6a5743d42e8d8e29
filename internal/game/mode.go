package game

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a round is played
type Mode string

const (
	// ModeInstant decides the round as soon as the user picks.
	ModeInstant Mode = "instant"
	// ModeShuffle plays a timed shuffle before revealing the computer's sign.
	ModeShuffle Mode = "shuffle"
)

func (m Mode) String() string { return string(m) }

// ParseMode converts a config or query value into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeInstant:
		return ModeInstant, nil
	case ModeShuffle:
		return ModeShuffle, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want instant or shuffle)", s)
	}
}

// Timing holds the shuffle mode delays
type Timing struct {
	// TickInterval is the cosmetic placeholder rotation period.
	TickInterval time.Duration
	// RevealDelay runs from the pick to the computer's draw.
	RevealDelay time.Duration
	// ResetDelay runs from the reveal back to Picking.
	ResetDelay time.Duration
}

// DefaultTiming returns the delays used when nothing is configured
func DefaultTiming() Timing {
	return Timing{
		TickInterval: 100 * time.Millisecond,
		RevealDelay:  1 * time.Second,
		ResetDelay:   2 * time.Second,
	}
}

// Validate checks every delay is positive and the transitions outlast a tick
func (t Timing) Validate() error {
	if t.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if t.RevealDelay <= t.TickInterval {
		return fmt.Errorf("reveal delay (%s) must be longer than tick interval (%s)", t.RevealDelay, t.TickInterval)
	}
	if t.ResetDelay <= t.TickInterval {
		return fmt.Errorf("reset delay (%s) must be longer than tick interval (%s)", t.ResetDelay, t.TickInterval)
	}
	return nil
}
