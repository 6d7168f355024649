package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
)

type memoryRepository struct {
	mu        sync.Mutex
	giveaways map[string]*models.Giveaway
	entries   map[string]map[int64]*models.Participant
}

// NewRepository returns a process-local store. Every operation runs under a
// single mutex which makes the conditional primitives atomic.
func NewRepository() repository.Store {
	return &memoryRepository{
		giveaways: make(map[string]*models.Giveaway),
		entries:   make(map[string]map[int64]*models.Participant),
	}
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *memoryRepository) CreateGiveaway(ctx context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.giveaways[g.ID] = g.Clone()
	r.entries[g.ID] = make(map[int64]*models.Participant)
	return nil
}

func (r *memoryRepository) GetGiveaway(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	return g.Clone(), nil
}

func (r *memoryRepository) ListGiveaways(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Giveaway, 0, len(r.giveaways))
	for _, g := range r.giveaways {
		if filter.ActiveOnly && g.Ended {
			continue
		}
		if filter.GuildID != nil && g.GuildID != *filter.GuildID {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EndsAt.Equal(out[j].EndsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].EndsAt.Before(out[j].EndsAt)
	})
	return out, nil
}

func (r *memoryRepository) UpdateGiveaway(ctx context.Context, g *models.Giveaway, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.giveaways[g.ID]
	if !ok || !cur.Open(now) {
		return false, nil
	}
	updated := g.Clone()
	updated.EndsAt = updated.EndsAt.UTC()
	updated.Ended = false
	updated.Reopened = false
	r.giveaways[g.ID] = updated
	return true, nil
}

func (r *memoryRepository) DeleteGiveaway(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	delete(r.giveaways, id)
	return nil
}

func (r *memoryRepository) MarkEnded(ctx context.Context, id string) (bool, error) {
	return r.setEnded(id, true)
}

func (r *memoryRepository) Reopen(ctx context.Context, id string) (bool, error) {
	return r.setEnded(id, false)
}

func (r *memoryRepository) setEnded(id string, ended bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[id]
	if !ok || g.Ended == ended {
		return false, nil
	}
	g.Ended = ended
	// only a reopen leaves the marker set, the next close clears it
	g.Reopened = !ended
	return true, nil
}

func (r *memoryRepository) InsertParticipant(ctx context.Context, giveawayID string, userID int64, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[giveawayID]
	if !ok {
		return 0, repository.ErrGiveawayNotFound
	}
	if !g.Open(now) {
		return 0, repository.ErrGiveawayClosed
	}
	entries := r.entries[giveawayID]
	if _, exists := entries[userID]; exists {
		return 0, repository.ErrAlreadyJoined
	}
	if g.MaxEntries != nil && len(entries) >= *g.MaxEntries {
		return 0, repository.ErrCapacityReached
	}
	entries[userID] = &models.Participant{
		GiveawayID: giveawayID,
		UserID:     userID,
		CreatedAt:  now.Truncate(time.Millisecond),
	}
	return len(entries), nil
}

func (r *memoryRepository) IsParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[giveawayID][userID]
	return ok, nil
}

func (r *memoryRepository) CountParticipants(ctx context.Context, giveawayID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries[giveawayID]), nil
}

func (r *memoryRepository) ListParticipants(ctx context.Context, giveawayID string) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Participant, 0, len(r.entries[giveawayID]))
	for _, p := range r.entries[giveawayID] {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) SetWinners(ctx context.Context, giveawayID string, winnerIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	winners := make(map[int64]struct{}, len(winnerIDs))
	for _, id := range winnerIDs {
		winners[id] = struct{}{}
	}
	for id, p := range r.entries[giveawayID] {
		_, p.Winner = winners[id]
	}
	return nil
}
