package rps

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChoice is returned when a value is not one of the three hand signs.
var ErrInvalidChoice = errors.New("invalid choice")

// Choice is a hand sign.
type Choice uint8

const (
	Rock Choice = iota
	Paper
	Scissors
)

// Choices lists every hand sign in display order.
var Choices = [...]Choice{Rock, Paper, Scissors}

var choiceNames = [...]string{"rock", "paper", "scissors"}

var choiceEmoji = [...]string{"✊", "✋", "✌️"}

// beats[c] is the sign that c defeats.
var beats = [...]Choice{Rock: Scissors, Paper: Rock, Scissors: Paper}

// Valid reports whether c is one of the three hand signs.
func (c Choice) Valid() bool {
	return int(c) < len(choiceNames)
}

// String returns the lowercase name used on the wire
func (c Choice) String() string {
	if !c.Valid() {
		return fmt.Sprintf("choice(%d)", uint8(c))
	}
	return choiceNames[c]
}

// Title returns the capitalised label shown next to buttons
func (c Choice) Title() string {
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Emoji returns the hand sign glyph
func (c Choice) Emoji() string {
	if !c.Valid() {
		return "?"
	}
	return choiceEmoji[c]
}

// Beats reports whether c defeats other.
func (c Choice) Beats(other Choice) bool {
	return c.Valid() && beats[c] == other
}

// ParseChoice converts a wire name (case-insensitive) into a Choice.
func ParseChoice(s string) (Choice, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range choiceNames {
		if n == name {
			return Choice(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// MarshalText implements encoding.TextMarshaler
func (c Choice) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, uint8(c))
	}
	return []byte(choiceNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Choice) UnmarshalText(text []byte) error {
	parsed, err := ParseChoice(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
