package random

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6, 7, 8}
	r := rand.New(NewSeededSource(7))

	got := Sample(r, pool, 3)
	require.Len(t, got, 3)
	assert.Subset(t, pool, got)

	seen := make(map[int]bool)
	for _, v := range got {
		assert.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, pool, "pool must not be modified")
}

func TestSample_Bounds(t *testing.T) {
	r := rand.New(NewSeededSource(1))

	assert.Empty(t, Sample(r, []int{1, 2}, 0))
	assert.Empty(t, Sample[int](r, nil, 3))
	assert.ElementsMatch(t, []int{1, 2}, Sample(r, []int{1, 2}, 5))
}

func TestSample_Deterministic(t *testing.T) {
	pool := []int64{10, 20, 30, 40, 50}

	a := Sample(rand.New(NewSeededSource(42)), pool, 2)
	b := Sample(rand.New(NewSeededSource(42)), pool, 2)
	assert.Equal(t, a, b)
}

func TestSample_Uniform(t *testing.T) {
	pool := []int{0, 1, 2, 3}
	r := rand.New(NewSeededSource(99))
	counts := make([]int, len(pool))

	const rounds = 20000
	for i := 0; i < rounds; i++ {
		for _, v := range Sample(r, pool, 1) {
			counts[v]++
		}
	}
	for i, c := range counts {
		assert.InDelta(t, rounds/len(pool), c, rounds*0.03, "element %d", i)
	}
}

func TestNewSecureSource(t *testing.T) {
	src, err := NewSecureSource()
	require.NoError(t, err)
	r := rand.New(src)
	assert.Len(t, Sample(r, []int{1, 2, 3}, 2), 2)
}
