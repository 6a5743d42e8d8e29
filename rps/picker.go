package rps

import (
	rand "math/rand/v2"
	"sync"
)

// Picker chooses the computer's hand sign.
type Picker interface {
	Pick() Choice
}

// PickerFunc adapts a function to the Picker interface
type PickerFunc func() Choice

func (f PickerFunc) Pick() Choice { return f() }

// RandomPicker draws uniformly from Choices. It is safe for concurrent use.
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker creates a picker backed by rng. A nil rng uses the
// runtime's global generator.
func NewRandomPicker(rng *rand.Rand) *RandomPicker {
	return &RandomPicker{rng: rng}
}

// Pick returns rock, paper or scissors with probability 1/3 each
func (p *RandomPicker) Pick() Choice {
	if p.rng == nil {
		return Choices[rand.IntN(len(Choices))]
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return Choices[p.rng.IntN(len(Choices))]
}
