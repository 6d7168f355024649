package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrGiveawayClosed   = errors.New("giveaway is closed")
	ErrAlreadyJoined    = errors.New("participant already registered")
	ErrCapacityReached  = errors.New("giveaway capacity reached")
)

type GiveawayRepository interface {
	CreateGiveaway(ctx context.Context, g *models.Giveaway) error
	// GetGiveaway returns ErrGiveawayNotFound for unknown ids.
	GetGiveaway(ctx context.Context, id string) (*models.Giveaway, error)
	ListGiveaways(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error)
	// UpdateGiveaway persists the editable fields only while the stored
	// giveaway is open at now: not ended, not reopened by a reroll, deadline
	// not passed. It reports whether a row was written.
	UpdateGiveaway(ctx context.Context, g *models.Giveaway, now time.Time) (bool, error)
	// DeleteGiveaway removes the giveaway and its participants. Deleting an
	// unknown id is not an error.
	DeleteGiveaway(ctx context.Context, id string) error

	// MarkEnded flips ended from false to true, clears the reopened marker
	// and reports whether it did.
	MarkEnded(ctx context.Context, id string) (bool, error)
	// Reopen flips ended from true to false for a reroll and sets the
	// reopened marker, which keeps edits and inserts out until MarkEnded.
	Reopen(ctx context.Context, id string) (bool, error)
}

type ParticipantRepository interface {
	// InsertParticipant registers userID as one atomic unit: the giveaway is
	// re-checked as open at now, then uniqueness and capacity are enforced.
	// Returns the participant count after the insert, or one of
	// ErrGiveawayNotFound, ErrGiveawayClosed, ErrAlreadyJoined, ErrCapacityReached.
	InsertParticipant(ctx context.Context, giveawayID string, userID int64, now time.Time) (int, error)
	IsParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error)
	CountParticipants(ctx context.Context, giveawayID string) (int, error)
	ListParticipants(ctx context.Context, giveawayID string) ([]models.Participant, error)
	// SetWinners rewrites every winner flag of the giveaway in one unit.
	SetWinners(ctx context.Context, giveawayID string, winnerIDs []int64) error
}

// Store is the full persistence contract of the lifecycle engine.
type Store interface {
	GiveawayRepository
	ParticipantRepository
	Ping(ctx context.Context) error
}
