// Package rps holds the rules of Rock-Paper-Scissors: the three hand signs,
// the function that decides a round, the computer's random picker and the
// running score.
//
// Everything here is free of timers and I/O. Round sequencing lives in
// internal/game.
//
//	score := rps.Score{}
//	picker := rps.NewRandomPicker(rand.New(rand.NewPCG(1, 2)))
//	result := rps.Decide(rps.Rock, picker.Pick())
//	score.Apply(result)
package rps
