package nn

import "math/rand"

// maskRand is the single source of randomness for every dropout mask in this
// package. Mask sampling happens on the caller's goroutine, so the generator
// is not synchronized. Seed it through SetSeed for deterministic test replay.
var maskRand = rand.New(rand.NewSource(1)) //nolint:gosec // not security-sensitive

// SetSeed reseeds the dropout mask generator. Useful for reproducible
// training runs and statistical tests.
func SetSeed(seed int64) {
	maskRand = rand.New(rand.NewSource(seed)) //nolint:gosec // not security-sensitive
}
