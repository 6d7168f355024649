package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/common/validation"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
)

// Registry owns CRUD and validation of giveaways.
type Registry struct {
	repo  repository.GiveawayRepository
	newID func() string
}

func NewRegistry(repo repository.GiveawayRepository) *Registry {
	return &Registry{repo: repo, newID: newGiveawayID}
}

func newGiveawayID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create validates the draft and persists a new active giveaway. The end
// date is not checked here.
func (r *Registry) Create(ctx context.Context, draft models.GiveawayDraft) (*models.Giveaway, error) {
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}

	g := &models.Giveaway{
		ID:           r.newID(),
		GuildID:      draft.GuildID,
		ChannelID:    draft.ChannelID,
		MessageID:    draft.MessageID,
		Name:         draft.Name,
		Description:  draft.Description,
		Color:        models.DefaultColor,
		WinnersCount: draft.WinnersCount,
		EndsAt:       draft.EndsAt.UTC().Truncate(time.Millisecond),
	}
	if draft.Color != nil {
		g.Color = *draft.Color
	}
	if draft.MaxEntries != nil {
		v := *draft.MaxEntries
		g.MaxEntries = &v
	}
	g.ClampWinners()

	if err := r.repo.CreateGiveaway(ctx, g); err != nil {
		return nil, mapRepoError("create giveaway", g.ID, 0, err)
	}
	return g, nil
}

func (r *Registry) Get(ctx context.Context, id string) (*models.Giveaway, error) {
	g, err := r.repo.GetGiveaway(ctx, id)
	if err != nil {
		return nil, mapRepoError("get giveaway", id, 0, err)
	}
	return g, nil
}

// List includes giveaways past their deadline that were not closed yet.
func (r *Registry) List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	gs, err := r.repo.ListGiveaways(ctx, filter)
	if err != nil {
		return nil, mapRepoError("list giveaways", "", 0, err)
	}
	return gs, nil
}

// Update merges the non-nil fields of update. winners_count is clamped to
// max_entries after the merge. Only giveaways open at now can be edited, so
// ends_at never moves once the deadline passed or a reroll is running.
func (r *Registry) Update(ctx context.Context, id string, update models.GiveawayUpdate, now time.Time) (*models.Giveaway, error) {
	g, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.Open(now) {
		return nil, apperrors.NewAlreadyEndedError(id)
	}
	if update.IsEmpty() {
		return nil, apperrors.NewInvalidEditNoFieldsError()
	}
	if err := validation.Struct(update); err != nil {
		return nil, err
	}

	g.Apply(update)
	g.ClampWinners()

	written, err := r.repo.UpdateGiveaway(ctx, g, now)
	if err != nil {
		return nil, mapRepoError("update giveaway", id, 0, err)
	}
	if !written {
		// closed, reopened or deleted between the read and the write
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperrors.NewAlreadyEndedError(id)
	}
	return g, nil
}

// Delete removes the giveaway with its participants. Unknown ids are fine.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.DeleteGiveaway(ctx, id); err != nil {
		return mapRepoError("delete giveaway", id, 0, err)
	}
	return nil
}

func (r *Registry) markEnded(ctx context.Context, id string) (bool, error) {
	changed, err := r.repo.MarkEnded(ctx, id)
	if err != nil {
		return false, mapRepoError("mark giveaway ended", id, 0, err)
	}
	return changed, nil
}

func (r *Registry) reopen(ctx context.Context, id string) (bool, error) {
	changed, err := r.repo.Reopen(ctx, id)
	if err != nil {
		return false, mapRepoError("reopen giveaway", id, 0, err)
	}
	return changed, nil
}
