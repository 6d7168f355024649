package service

import (
	"context"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
)

// GiveawayService drives the giveaway lifecycle.
type GiveawayService interface {
	Create(ctx context.Context, draft models.GiveawayDraft) (*models.Giveaway, error)
	// guildID scopes the operation; 0 skips the guild check.
	Edit(ctx context.Context, guildID int64, id string, update models.GiveawayUpdate) (*models.Giveaway, error)
	Get(ctx context.Context, guildID int64, id string) (*models.Giveaway, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error)
	Register(ctx context.Context, id string, userID int64) (int, error)
	Close(ctx context.Context, id string) error
	Reroll(ctx context.Context, guildID int64, id string) ([]int64, error)
	Delete(ctx context.Context, guildID int64, id string) error
	Participants(ctx context.Context, guildID int64, id string) ([]models.Participant, error)
}

// EligibilityVerifier narrows a participant set down to the users that may
// still win. A failure aborts the closure in progress.
type EligibilityVerifier interface {
	Verify(ctx context.Context, giveaway *models.Giveaway, participantIDs []int64) ([]int64, error)
}

// Presenter is notified after state changes have been committed. Its
// failures are logged and never roll anything back.
type Presenter interface {
	OnParticipantCountChanged(ctx context.Context, giveaway *models.Giveaway, count int) error
	OnClosed(ctx context.Context, giveaway *models.Giveaway, winnerIDs []int64) error
}

// GiveawayLister is the read side the scheduler needs.
type GiveawayLister interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error)
}

// Closer closes one giveaway, idempotently.
type Closer interface {
	Close(ctx context.Context, id string) error
}

// TickLocker grants a lease so that only one instance runs a tick.
type TickLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
