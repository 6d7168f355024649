package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/repository/repositorytest"
)

func TestMemoryRepository(t *testing.T) {
	repositorytest.Run(t, func(t *testing.T) repository.Store {
		return NewRepository()
	})
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	maxEntries := 3
	g := &models.Giveaway{ID: "g1", Name: "x", WinnersCount: 1, MaxEntries: &maxEntries, EndsAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.CreateGiveaway(ctx, g))

	// mutating the caller's value must not leak into the store
	g.Name = "changed"
	*g.MaxEntries = 100

	got, err := r.GetGiveaway(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 3, *got.MaxEntries)

	got.Ended = true
	again, err := r.GetGiveaway(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, again.Ended)
}
