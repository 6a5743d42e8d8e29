package rps

import "fmt"

// Result is the outcome of one round, seen from the user's side.
type Result uint8

const (
	Tie Result = iota
	UserWins
	ComputerWins
)

// Decide applies the fixed rule: equal signs tie, rock beats scissors,
// scissors beats paper, paper beats rock.
func Decide(user, computer Choice) Result {
	switch {
	case user == computer:
		return Tie
	case user.Beats(computer):
		return UserWins
	default:
		return ComputerWins
	}
}

// String returns the wire form of the result
func (r Result) String() string {
	switch r {
	case Tie:
		return "tie"
	case UserWins:
		return "user-wins"
	case ComputerWins:
		return "computer-wins"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// Message returns the line shown to the player
func (r Result) Message() string {
	switch r {
	case UserWins:
		return "You win!"
	case ComputerWins:
		return "Computer wins!"
	default:
		return "It's a tie!"
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
