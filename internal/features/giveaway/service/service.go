package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
)

var tracer = otel.Tracer("giveaway-engine/giveaway")

type giveawayService struct {
	registry  *Registry
	ledger    *Ledger
	selector  *WinnerSelector
	verifier  EligibilityVerifier
	presenter Presenter
	now       func() time.Time
	log       zerolog.Logger
}

type Option func(*giveawayService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *giveawayService) {
		s.now = now
	}
}

func NewGiveawayService(
	store repository.Store,
	selector *WinnerSelector,
	verifier EligibilityVerifier,
	presenter Presenter,
	opts ...Option,
) GiveawayService {
	s := &giveawayService{
		registry:  NewRegistry(store),
		ledger:    NewLedger(store),
		selector:  selector,
		verifier:  verifier,
		presenter: presenter,
		now:       time.Now,
		log:       logger.Component("giveaway"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *giveawayService) Create(ctx context.Context, draft models.GiveawayDraft) (*models.Giveaway, error) {
	if !draft.EndsAt.After(s.now()) {
		return nil, apperrors.NewPastEndDateError(draft.EndsAt)
	}

	g, err := s.registry.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("giveaway_id", g.ID).
		Int64("guild_id", g.GuildID).
		Int("winners_count", g.WinnersCount).
		Time("ends_at", g.EndsAt).
		Msg("Giveaway created")
	return g, nil
}

func (s *giveawayService) Edit(ctx context.Context, guildID int64, id string, update models.GiveawayUpdate) (*models.Giveaway, error) {
	now := s.now()
	if update.EndsAt != nil && !update.EndsAt.After(now) {
		return nil, apperrors.NewPastEndDateError(*update.EndsAt)
	}
	if _, err := s.getScoped(ctx, guildID, id); err != nil {
		return nil, err
	}

	g, err := s.registry.Update(ctx, id, update, now)
	if err != nil {
		return nil, err
	}

	// refresh the display with the edited fields
	count, err := s.ledger.Count(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("giveaway_id", id).Msg("Failed to count participants after edit")
	} else {
		s.notifyCount(ctx, g, count)
	}

	s.log.Info().Str("giveaway_id", id).Msg("Giveaway edited")
	return g, nil
}

func (s *giveawayService) Get(ctx context.Context, guildID int64, id string) (*models.Giveaway, error) {
	return s.getScoped(ctx, guildID, id)
}

func (s *giveawayService) List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	return s.registry.List(ctx, filter)
}

func (s *giveawayService) Register(ctx context.Context, id string, userID int64) (int, error) {
	ctx, span := tracer.Start(ctx, "giveaway.register", trace.WithAttributes(
		attribute.String("giveaway.id", id),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	now := s.now()
	g, err := s.registry.Get(ctx, id)
	if err != nil {
		return 0, spanError(span, err)
	}
	// past the deadline counts as ended even before the scheduler closes it
	if !g.Open(now) {
		return 0, spanError(span, apperrors.NewAlreadyEndedError(id))
	}

	count, err := s.ledger.Register(ctx, id, userID, now)
	if err != nil {
		return 0, spanError(span, err)
	}

	s.log.Debug().Str("giveaway_id", id).Int64("user_id", userID).Int("count", count).Msg("Participant registered")
	s.notifyCount(ctx, g, count)
	return count, nil
}

func (s *giveawayService) Close(ctx context.Context, id string) error {
	_, _, err := s.close(ctx, id)
	return err
}

// close runs the closure sequence. closed is false when another caller had
// already ended the giveaway, in which case nothing else happens.
func (s *giveawayService) close(ctx context.Context, id string) (winners []int64, closed bool, err error) {
	ctx, span := tracer.Start(ctx, "giveaway.close", trace.WithAttributes(attribute.String("giveaway.id", id)))
	defer span.End()

	changed, err := s.registry.markEnded(ctx, id)
	if err != nil {
		return nil, false, spanError(span, err)
	}
	if !changed {
		s.log.Debug().Str("giveaway_id", id).Msg("Giveaway already ended, skipping close")
		return nil, false, nil
	}

	// From here on the giveaway stays ended whatever happens.
	g, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, true, s.closeFailed(span, id, "load giveaway", err)
	}
	participants, err := s.ledger.List(ctx, id)
	if err != nil {
		return nil, true, s.closeFailed(span, id, "list participants", err)
	}

	filter := func(ctx context.Context, ids []int64) ([]int64, error) {
		return s.verifier.Verify(ctx, g, ids)
	}
	winners, err = s.selector.Select(ctx, models.ParticipantIDs(participants), g.WinnersCount, filter)
	if err != nil {
		return nil, true, s.closeFailed(span, id, "select winners", err)
	}
	if err := s.ledger.SetWinners(ctx, id, winners); err != nil {
		return nil, true, s.closeFailed(span, id, "store winners", err)
	}

	span.SetAttributes(attribute.Int("giveaway.winners", len(winners)))
	s.log.Info().
		Str("giveaway_id", id).
		Int("participants", len(participants)).
		Ints64("winners", winners).
		Msg("Giveaway closed")

	if err := s.presenter.OnClosed(ctx, g, winners); err != nil {
		s.log.Warn().Err(err).Str("giveaway_id", id).Msg("Presenter failed on close")
	}
	return winners, true, nil
}

func (s *giveawayService) closeFailed(span trace.Span, id, step string, err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeCollaboratorFailure {
		appErr = apperrors.NewCollaboratorError("close giveaway", err)
	}
	appErr.WithDetail("giveaway_id", id).WithDetail("step", step).WithStack()

	s.log.Error().
		Err(err).
		Str("giveaway_id", id).
		Str("step", step).
		Strs("stack", appErr.Stack).
		Msg("Giveaway ended without winners, manual reroll required")
	return spanError(span, appErr)
}

func (s *giveawayService) Reroll(ctx context.Context, guildID int64, id string) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "giveaway.reroll", trace.WithAttributes(attribute.String("giveaway.id", id)))
	defer span.End()

	g, err := s.getScoped(ctx, guildID, id)
	if err != nil {
		return nil, spanError(span, err)
	}
	if !g.Ended {
		return nil, spanError(span, apperrors.NewStillActiveError(id))
	}

	// the reopened marker keeps edits and joins out until close flips it back
	if _, err := s.registry.reopen(ctx, id); err != nil {
		return nil, spanError(span, err)
	}

	winners, closed, err := s.close(ctx, id)
	if err != nil {
		return nil, err
	}
	if !closed {
		// a concurrent close won the race, report what it recorded
		participants, err := s.ledger.List(ctx, id)
		if err != nil {
			return nil, spanError(span, err)
		}
		winners = models.WinnerIDs(participants)
	}

	s.log.Info().Str("giveaway_id", id).Ints64("winners", winners).Msg("Giveaway rerolled")
	return winners, nil
}

func (s *giveawayService) Delete(ctx context.Context, guildID int64, id string) error {
	if _, err := s.getScoped(ctx, guildID, id); err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("giveaway_id", id).Msg("Giveaway deleted")
	return nil
}

func (s *giveawayService) Participants(ctx context.Context, guildID int64, id string) ([]models.Participant, error) {
	if _, err := s.getScoped(ctx, guildID, id); err != nil {
		return nil, err
	}
	return s.ledger.List(ctx, id)
}

func (s *giveawayService) getScoped(ctx context.Context, guildID int64, id string) (*models.Giveaway, error) {
	g, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if guildID != 0 && g.GuildID != guildID {
		return nil, apperrors.NewForbiddenError("giveaway belongs to another guild").
			WithDetail("giveaway_id", id)
	}
	return g, nil
}

func (s *giveawayService) notifyCount(ctx context.Context, g *models.Giveaway, count int) {
	if err := s.presenter.OnParticipantCountChanged(ctx, g, count); err != nil {
		s.log.Warn().Err(err).Str("giveaway_id", g.ID).Int("count", count).Msg("Presenter failed on participant count change")
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
