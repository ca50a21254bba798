// Copyright 2024-2026 Aiku AI

package buttify

import (
	"math/rand/v2"
)

// DefaultWord is used when a channel has no substitution word configured.
const DefaultWord = "BUTT"

// ChannelState is the per-channel record the engine reads and updates. A
// state belongs to exactly one channel and must not be shared.
type ChannelState struct {
	// TriggerRate is the configured denominator, validated by the command
	// layer to lie within [5, 1000].
	TriggerRate int
	Word        string
	// Missed counts consecutive messages without a substitution.
	Missed int

	RandomWords        []string
	RandomWordsEnabled bool
}

// Rand is the source of uniform integer draws. IntN returns a value in
// [0, n) and is only called with n > 0.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRand draws from the math/rand/v2 global source.
var DefaultRand Rand = globalRand{}
