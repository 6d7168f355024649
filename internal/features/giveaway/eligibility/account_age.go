package eligibility

import (
	"context"
	"time"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	tgutil "giveaway-engine/internal/utils/telegram"
)

// MinAccountAge drops accounts estimated to be younger than minAge, the
// usual shape of giveaway farming. Ids with no estimate are dropped too.
type MinAccountAge struct {
	minAge time.Duration
	now    func() time.Time
}

func NewMinAccountAge(minAge time.Duration) *MinAccountAge {
	return &MinAccountAge{minAge: minAge, now: time.Now}
}

func (v *MinAccountAge) Verify(ctx context.Context, g *models.Giveaway, participantIDs []int64) ([]int64, error) {
	now := v.now()
	eligible := make([]int64, 0, len(participantIDs))
	for _, userID := range participantIDs {
		age, ok := tgutil.AccountAge(userID, now)
		if ok && age >= v.minAge {
			eligible = append(eligible, userID)
		}
	}

	if dropped := len(participantIDs) - len(eligible); dropped > 0 {
		logger.Debug().
			Str("giveaway_id", g.ID).
			Int("dropped", dropped).
			Dur("min_age", v.minAge).
			Msg("Young accounts excluded")
	}
	return eligible, nil
}

type verifier interface {
	Verify(ctx context.Context, g *models.Giveaway, participantIDs []int64) ([]int64, error)
}

// Chain runs verifiers in order, each one sees what the previous kept.
type Chain []verifier

func (c Chain) Verify(ctx context.Context, g *models.Giveaway, participantIDs []int64) ([]int64, error) {
	ids := participantIDs
	for _, v := range c {
		if len(ids) == 0 {
			break
		}
		var err error
		if ids, err = v.Verify(ctx, g, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
