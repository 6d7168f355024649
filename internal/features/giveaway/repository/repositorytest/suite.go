// Package repositorytest holds the behaviour every repository.Store must share.
package repositorytest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func giveaway(id string, guildID int64, endsIn time.Duration, maxEntries *int) *models.Giveaway {
	return &models.Giveaway{
		ID:           id,
		GuildID:      guildID,
		ChannelID:    -100,
		MessageID:    5,
		Name:         "Giveaway " + id,
		Description:  "desc",
		Color:        models.DefaultColor,
		MaxEntries:   maxEntries,
		WinnersCount: 1,
		EndsAt:       now.Add(endsIn),
	}
}

func intPtr(v int) *int { return &v }

// Run executes the suite against stores built by newStore. Every subtest
// gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("CreateAndGet", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		g := giveaway("g1", 1, time.Hour, intPtr(10))
		require.NoError(t, s.CreateGiveaway(ctx, g))

		got, err := s.GetGiveaway(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, g.Name, got.Name)
		assert.Equal(t, g.GuildID, got.GuildID)
		assert.Equal(t, g.ChannelID, got.ChannelID)
		assert.Equal(t, g.MessageID, got.MessageID)
		assert.Equal(t, g.Color, got.Color)
		require.NotNil(t, got.MaxEntries)
		assert.Equal(t, 10, *got.MaxEntries)
		assert.True(t, g.EndsAt.Equal(got.EndsAt))
		assert.False(t, got.Ended)

		_, err = s.GetGiveaway(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
	})

	t.Run("ListFilters", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("b", 1, 2*time.Hour, nil)))
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("a", 1, time.Hour, nil)))
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("c", 2, time.Hour, nil)))
		_, err := s.MarkEnded(ctx, "b")
		require.NoError(t, err)

		all, err := s.ListGiveaways(ctx, models.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b"}, ids(all))

		active, err := s.ListGiveaways(ctx, models.ListFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids(active))

		guild := int64(1)
		scoped, err := s.ListGiveaways(ctx, models.ListFilter{ActiveOnly: true, GuildID: &guild})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(scoped))
	})

	t.Run("UpdateOnlyWhileNotEnded", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		g := giveaway("g1", 1, time.Hour, nil)
		require.NoError(t, s.CreateGiveaway(ctx, g))

		g.Name = "renamed"
		g.MaxEntries = intPtr(3)
		ok, err := s.UpdateGiveaway(ctx, g, now)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.GetGiveaway(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		require.NotNil(t, got.MaxEntries)
		assert.Equal(t, 3, *got.MaxEntries)

		_, err = s.MarkEnded(ctx, "g1")
		require.NoError(t, err)

		g.Name = "too late"
		ok, err = s.UpdateGiveaway(ctx, g, now)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err = s.GetGiveaway(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
	})

	t.Run("UpdateRechecksDeadline", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		g := giveaway("g1", 1, time.Hour, nil)
		require.NoError(t, s.CreateGiveaway(ctx, g))

		// the new deadline is in the future, the stored one is not
		g.EndsAt = now.Add(48 * time.Hour)
		ok, err := s.UpdateGiveaway(ctx, g, now.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.GetGiveaway(ctx, "g1")
		require.NoError(t, err)
		assert.True(t, now.Add(time.Hour).Equal(got.EndsAt))
	})

	t.Run("ReopenedRejectsEditsAndInserts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		g := giveaway("g1", 1, time.Hour, nil)
		require.NoError(t, s.CreateGiveaway(ctx, g))
		_, err := s.InsertParticipant(ctx, "g1", 10, now)
		require.NoError(t, err)

		ok, err := s.MarkEnded(ctx, "g1")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = s.Reopen(ctx, "g1")
		require.NoError(t, err)
		require.True(t, ok)

		got, err := s.GetGiveaway(ctx, "g1")
		require.NoError(t, err)
		assert.False(t, got.Ended)
		assert.True(t, got.Reopened)

		g.EndsAt = now.Add(24 * time.Hour)
		ok, err = s.UpdateGiveaway(ctx, g, now)
		require.NoError(t, err)
		assert.False(t, ok, "edit while reopened")

		_, err = s.InsertParticipant(ctx, "g1", 11, now)
		assert.ErrorIs(t, err, repository.ErrGiveawayClosed)

		ok, err = s.MarkEnded(ctx, "g1")
		require.NoError(t, err)
		require.True(t, ok)

		got, err = s.GetGiveaway(ctx, "g1")
		require.NoError(t, err)
		assert.True(t, got.Ended)
		assert.False(t, got.Reopened)
		assert.True(t, now.Add(time.Hour).Equal(got.EndsAt))

		n, err := s.CountParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("MarkEndedAndReopenAreConditional", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, nil)))

		ok, err := s.Reopen(ctx, "g1")
		require.NoError(t, err)
		assert.False(t, ok, "reopen of an open giveaway")

		ok, err = s.MarkEnded(ctx, "g1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.MarkEnded(ctx, "g1")
		require.NoError(t, err)
		assert.False(t, ok, "second mark must lose")

		ok, err = s.Reopen(ctx, "g1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.MarkEnded(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("MarkEndedRace", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, nil)))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.MarkEnded(ctx, "g1")
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("InsertParticipant", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, intPtr(2))))

		count, err := s.InsertParticipant(ctx, "g1", 10, now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = s.InsertParticipant(ctx, "g1", 10, now)
		assert.ErrorIs(t, err, repository.ErrAlreadyJoined)

		count, err = s.InsertParticipant(ctx, "g1", 11, now)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		_, err = s.InsertParticipant(ctx, "g1", 12, now)
		assert.ErrorIs(t, err, repository.ErrCapacityReached)

		// a registered user rejoining a full giveaway is told they are in
		_, err = s.InsertParticipant(ctx, "g1", 11, now)
		assert.ErrorIs(t, err, repository.ErrAlreadyJoined)

		_, err = s.InsertParticipant(ctx, "missing", 10, now)
		assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)

		joined, err := s.IsParticipant(ctx, "g1", 11)
		require.NoError(t, err)
		assert.True(t, joined)

		joined, err = s.IsParticipant(ctx, "g1", 12)
		require.NoError(t, err)
		assert.False(t, joined)

		n, err := s.CountParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("InsertParticipantRechecksDeadline", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, nil)))

		_, err := s.InsertParticipant(ctx, "g1", 10, now.Add(time.Hour))
		assert.ErrorIs(t, err, repository.ErrGiveawayClosed)

		_, err = s.MarkEnded(ctx, "g1")
		require.NoError(t, err)
		_, err = s.InsertParticipant(ctx, "g1", 10, now)
		assert.ErrorIs(t, err, repository.ErrGiveawayClosed)

		n, err := s.CountParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ConcurrentInsertsRespectCapacity", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, intPtr(5))))

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			full     int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, err := s.InsertParticipant(ctx, "g1", userID, now)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					accepted++
				case errors.Is(err, repository.ErrCapacityReached):
					full++
				default:
					t.Errorf("unexpected error for user %d: %v", userID, err)
				}
			}(int64(100 + i))
		}
		wg.Wait()

		assert.Equal(t, 5, accepted)
		assert.Equal(t, 15, full)

		n, err := s.CountParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("ConcurrentDuplicateInserts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, nil)))

		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.InsertParticipant(ctx, "g1", 42, now); err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, ok)
		n, err := s.CountParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("SetWinnersReplacesFlags", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, nil)))
		for _, id := range []int64{1, 2, 3, 4} {
			_, err := s.InsertParticipant(ctx, "g1", id, now)
			require.NoError(t, err)
		}

		require.NoError(t, s.SetWinners(ctx, "g1", []int64{1, 3}))
		ps, err := s.ListParticipants(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, ps, 4)
		assert.ElementsMatch(t, []int64{1, 3}, models.WinnerIDs(ps))

		require.NoError(t, s.SetWinners(ctx, "g1", []int64{4}))
		ps, err = s.ListParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, []int64{4}, models.WinnerIDs(ps))

		require.NoError(t, s.SetWinners(ctx, "g1", nil))
		ps, err = s.ListParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Empty(t, models.WinnerIDs(ps))
		assert.ElementsMatch(t, []int64{1, 2, 3, 4}, models.ParticipantIDs(ps))
	})

	t.Run("DeleteRemovesParticipants", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g1", 1, time.Hour, nil)))
		require.NoError(t, s.CreateGiveaway(ctx, giveaway("g2", 1, time.Hour, nil)))
		_, err := s.InsertParticipant(ctx, "g1", 1, now)
		require.NoError(t, err)
		_, err = s.InsertParticipant(ctx, "g2", 1, now)
		require.NoError(t, err)

		require.NoError(t, s.DeleteGiveaway(ctx, "g1"))

		_, err = s.GetGiveaway(ctx, "g1")
		assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
		ps, err := s.ListParticipants(ctx, "g1")
		require.NoError(t, err)
		assert.Empty(t, ps)

		n, err := s.CountParticipants(ctx, "g2")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.NoError(t, s.DeleteGiveaway(ctx, "missing"))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})
}

func ids(gs []*models.Giveaway) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.ID
	}
	return out
}
