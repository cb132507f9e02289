package track

import (
	"math/rand/v2"
	"time"
)

// NewRNG builds a seeded random source. A nonzero seed reproduces the same
// stream deterministically (spec §5, §6); a zero seed draws fresh entropy
// from the wall clock, matching the teacher's "zero requests a fresh
// random seed" convention.
func NewRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// sampleStandardNormal draws n independent N(0,1) samples.
func sampleStandardNormal(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}
