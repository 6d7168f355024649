package eligibility

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
)

const defaultMaxInFlight = 8

// AllowAll treats every participant as eligible.
type AllowAll struct{}

func (AllowAll) Verify(ctx context.Context, g *models.Giveaway, participantIDs []int64) ([]int64, error) {
	return participantIDs, nil
}

type MembershipChecker interface {
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
}

// ChatMembership keeps the participants that are still members of the
// giveaway's channel. Any failed lookup fails the whole verification.
type ChatMembership struct {
	checker     MembershipChecker
	maxInFlight int
}

func NewChatMembership(checker MembershipChecker, maxInFlight int) *ChatMembership {
	if maxInFlight < 1 {
		maxInFlight = defaultMaxInFlight
	}
	return &ChatMembership{checker: checker, maxInFlight: maxInFlight}
}

func (v *ChatMembership) Verify(ctx context.Context, g *models.Giveaway, participantIDs []int64) ([]int64, error) {
	keep := make([]bool, len(participantIDs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(v.maxInFlight)
	for i, userID := range participantIDs {
		eg.Go(func() error {
			ok, err := v.checker.IsMember(egCtx, g.ChannelID, userID)
			if err != nil {
				return fmt.Errorf("check membership of user %d: %w", userID, err)
			}
			keep[i] = ok
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	eligible := make([]int64, 0, len(participantIDs))
	for i, userID := range participantIDs {
		if keep[i] {
			eligible = append(eligible, userID)
		}
	}

	logger.Debug().
		Str("giveaway_id", g.ID).
		Int("participants", len(participantIDs)).
		Int("eligible", len(eligible)).
		Msg("Membership verified")
	return eligible, nil
}
