package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand and the seed it was derived from. A nil seed
// falls back to the current time, so callers can log the seed and replay
// a session later with --seed.
func New(seed *int64) (*rand.Rand, int64) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return FromSeed(s), s
}

// FromSeed expands a single int64 into the two PCG words rand/v2 wants.
func FromSeed(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
