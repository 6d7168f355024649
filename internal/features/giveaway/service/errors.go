package service

import (
	"errors"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/features/giveaway/repository"
)

var ErrSchedulerRunning = errors.New("expiry scheduler already running")

// mapRepoError translates store sentinels into application errors. Anything
// unknown is a collaborator failure.
func mapRepoError(op, giveawayID string, userID int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrGiveawayNotFound):
		return apperrors.NewNotFoundError(giveawayID)
	case errors.Is(err, repository.ErrGiveawayClosed):
		return apperrors.NewAlreadyEndedError(giveawayID)
	case errors.Is(err, repository.ErrAlreadyJoined):
		return apperrors.NewAlreadyJoinedError(giveawayID, userID)
	case errors.Is(err, repository.ErrCapacityReached):
		return apperrors.NewCapacityReachedError(giveawayID)
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.NewCollaboratorError(op, err).WithDetail("giveaway_id", giveawayID)
}
