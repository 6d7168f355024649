package service

import (
	"context"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
)

// Ledger owns participant registration. Uniqueness and capacity are
// enforced by the store in a single atomic operation.
type Ledger struct {
	repo repository.ParticipantRepository
}

func NewLedger(repo repository.ParticipantRepository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) IsRegistered(ctx context.Context, giveawayID string, userID int64) (bool, error) {
	ok, err := l.repo.IsParticipant(ctx, giveawayID, userID)
	if err != nil {
		return false, mapRepoError("check participant", giveawayID, userID, err)
	}
	return ok, nil
}

func (l *Ledger) Count(ctx context.Context, giveawayID string) (int, error) {
	n, err := l.repo.CountParticipants(ctx, giveawayID)
	if err != nil {
		return 0, mapRepoError("count participants", giveawayID, 0, err)
	}
	return n, nil
}

// Register adds userID and returns the new participant count.
func (l *Ledger) Register(ctx context.Context, giveawayID string, userID int64, now time.Time) (int, error) {
	n, err := l.repo.InsertParticipant(ctx, giveawayID, userID, now)
	if err != nil {
		return 0, mapRepoError("register participant", giveawayID, userID, err)
	}
	return n, nil
}

func (l *Ledger) List(ctx context.Context, giveawayID string) ([]models.Participant, error) {
	ps, err := l.repo.ListParticipants(ctx, giveawayID)
	if err != nil {
		return nil, mapRepoError("list participants", giveawayID, 0, err)
	}
	return ps, nil
}

// SetWinners rewrites every winner flag: true iff the user is in winnerIDs.
func (l *Ledger) SetWinners(ctx context.Context, giveawayID string, winnerIDs []int64) error {
	if err := l.repo.SetWinners(ctx, giveawayID, winnerIDs); err != nil {
		return mapRepoError("set winners", giveawayID, 0, err)
	}
	return nil
}
