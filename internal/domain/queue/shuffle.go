package queue

import "math/rand/v2"

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// RandomShuffler performs an unbiased Fisher-Yates shuffle from the global
// source.
type RandomShuffler struct{}

func (RandomShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// IdentityShuffler leaves the order unchanged.
type IdentityShuffler struct{}

func (IdentityShuffler) Shuffle(int, func(i, j int)) {}
