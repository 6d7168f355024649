package random

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// NewSecureSource returns a ChaCha8 source seeded from crypto/rand.
func NewSecureSource() (rand.Source, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to read random seed: %w", err)
	}
	return rand.NewChaCha8(seed), nil
}

// NewSeededSource returns a deterministic source for tests and replays.
func NewSeededSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Sample draws k distinct elements from pool uniformly without replacement
// using a partial Fisher-Yates shuffle. pool is not modified. k is capped at
// len(pool).
func Sample[T any](r *rand.Rand, pool []T, k int) []T {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}

	work := make([]T, len(pool))
	copy(work, pool)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k:k]
}
