package rps

import "fmt"

// Score is the running tally of rounds won by each side. Ties are not counted.
type Score struct {
	User     int `json:"user"`
	Computer int `json:"computer"`
}

// Apply records the outcome of a completed round.
func (s *Score) Apply(r Result) {
	switch r {
	case UserWins:
		s.User++
	case ComputerWins:
		s.Computer++
	}
}

// Reset zeroes both counters
func (s *Score) Reset() {
	*s = Score{}
}

func (s Score) String() string {
	return fmt.Sprintf("You %d - %d Computer", s.User, s.Computer)
}
