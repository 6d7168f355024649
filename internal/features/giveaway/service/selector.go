package service

import (
	"context"
	"math/rand/v2"
	"sync"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/utils/random"
)

// EligibilityFilter returns the subset of ids still allowed to win.
type EligibilityFilter func(ctx context.Context, participantIDs []int64) ([]int64, error)

// WinnerSelector draws winners uniformly at random without replacement.
type WinnerSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewWinnerSelector(src rand.Source) *WinnerSelector {
	return &WinnerSelector{rng: rand.New(src)}
}

// Select draws min(winnersCount, eligible) distinct winners. Callers must
// pass winnersCount >= 1. Empty input returns without calling filter.
func (s *WinnerSelector) Select(ctx context.Context, participantIDs []int64, winnersCount int, filter EligibilityFilter) ([]int64, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	eligible, err := filter(ctx, participantIDs)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewCollaboratorError("verify eligibility", err)
	}

	pool := restrictTo(eligible, participantIDs)
	if len(pool) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return random.Sample(s.rng, pool, winnersCount), nil
}

// restrictTo keeps the ids of eligible that are participants, once each.
func restrictTo(eligible, participants []int64) []int64 {
	allowed := make(map[int64]struct{}, len(participants))
	for _, id := range participants {
		allowed[id] = struct{}{}
	}

	out := make([]int64, 0, len(eligible))
	for _, id := range eligible {
		if _, ok := allowed[id]; !ok {
			continue
		}
		delete(allowed, id)
		out = append(out, id)
	}
	return out
}
