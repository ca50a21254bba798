// Copyright 2024-2026 Aiku AI

package buttify

// EffectiveRate is the trigger denominator after starvation pressure. It
// equals rate while missed <= rate, then shrinks by one per extra missed
// message, and never drops below 1.
func EffectiveRate(rate, missed int) int {
	return max(rate-max(missed-rate, 0), 1)
}

// ShouldTrigger draws once in [1, EffectiveRate] and reports whether the
// draw hit 1. It also returns the effective rate used for the draw.
func ShouldTrigger(rng Rand, state *ChannelState) (bool, int) {
	eff := EffectiveRate(state.TriggerRate, state.Missed)
	return rng.IntN(eff)+1 == 1, eff
}
