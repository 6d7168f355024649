package presenter

import (
	"context"
	"errors"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/service"
)

// Log writes every notification to the application log.
type Log struct{}

func (Log) OnParticipantCountChanged(ctx context.Context, g *models.Giveaway, count int) error {
	logger.Info().
		Str("giveaway_id", g.ID).
		Int64("guild_id", g.GuildID).
		Int("count", count).
		Msg("Participant count changed")
	return nil
}

func (Log) OnClosed(ctx context.Context, g *models.Giveaway, winnerIDs []int64) error {
	logger.Info().
		Str("giveaway_id", g.ID).
		Int64("guild_id", g.GuildID).
		Ints64("winners", winnerIDs).
		Msg("Giveaway closed")
	return nil
}

// Multi fans out to every presenter. All of them are called even when
// one fails, errors are joined.
type Multi []service.Presenter

func (m Multi) OnParticipantCountChanged(ctx context.Context, g *models.Giveaway, count int) error {
	var errs []error
	for _, p := range m {
		if err := p.OnParticipantCountChanged(ctx, g, count); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) OnClosed(ctx context.Context, g *models.Giveaway, winnerIDs []int64) error {
	var errs []error
	for _, p := range m {
		if err := p.OnClosed(ctx, g, winnerIDs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
