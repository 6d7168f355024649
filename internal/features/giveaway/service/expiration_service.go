package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
)

type SchedulerConfig struct {
	Interval      time.Duration
	MaxConcurrent int
	// Locker is optional. Without it every instance runs every tick.
	Locker TickLocker
	Now    func() time.Time
}

// ExpiryScheduler periodically closes giveaways whose deadline passed.
// Double closes are harmless, Close is idempotent.
type ExpiryScheduler struct {
	lister        GiveawayLister
	closer        Closer
	interval      time.Duration
	maxConcurrent int
	locker        TickLocker
	now           func() time.Time
	log           zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewExpiryScheduler(lister GiveawayLister, closer Closer, cfg SchedulerConfig) *ExpiryScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTickInterval
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ExpiryScheduler{
		lister:        lister,
		closer:        closer,
		interval:      cfg.Interval,
		maxConcurrent: cfg.MaxConcurrent,
		locker:        cfg.Locker,
		now:           cfg.Now,
		log:           logger.Component("expiry_scheduler"),
	}
}

// Start runs one tick immediately and then one per interval until Stop or
// until ctx is cancelled.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.log.Info().Dur("interval", s.interval).Int("max_concurrent", s.maxConcurrent).Msg("Starting expiry scheduler")
	go s.loop(loopCtx, s.done)
	return nil
}

// Stop stops triggering new closures and waits for the ones in flight until
// ctx expires.
func (s *ExpiryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	s.log.Info().Msg("Stopping expiry scheduler")
	cancel()

	select {
	case <-done:
		s.log.Info().Msg("Expiry scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn().Msg("Expiry scheduler stop timed out, closures may still be running")
		return ctx.Err()
	}
}

func (s *ExpiryScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ExpiryScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.runTick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

func (s *ExpiryScheduler) runTick(ctx context.Context) {
	processed, err := s.Tick(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error().Err(err).Msg("Expiry tick failed")
		}
		return
	}
	if processed > 0 {
		s.log.Info().Int("processed", processed).Msg("Expiry tick finished")
	}
}

// Tick closes every expired active giveaway once and returns how many
// closures completed without error. It waits for the closures it started.
func (s *ExpiryScheduler) Tick(ctx context.Context) (int, error) {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, tickLockKey, s.interval)
		switch {
		case err != nil:
			// the lease only saves duplicate work, run the tick anyway
			s.log.Warn().Err(err).Msg("Tick lease unavailable, running without it")
		case !ok:
			s.log.Debug().Msg("Tick lease held by another instance, skipping")
			return 0, nil
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.log.Warn().Err(err).Msg("Failed to release tick lease")
				}
			}()
		}
	}

	giveaways, err := s.lister.List(ctx, models.ListFilter{ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list active giveaways: %w", err)
	}

	now := s.now()
	// closures must survive Stop, only new ones are prevented
	closeCtx := context.WithoutCancel(ctx)
	sem := make(chan struct{}, s.maxConcurrent)

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
	)

dispatch:
	for _, g := range giveaways {
		if !g.Expired(now) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Str("giveaway_id", id).Msg("Panic while closing giveaway")
				}
			}()

			if err := s.closer.Close(closeCtx, id); err != nil {
				s.log.Error().Err(err).Str("giveaway_id", id).Msg("Failed to close expired giveaway")
				return
			}
			processed.Add(1)
		}(g.ID)
	}

	wg.Wait()
	return int(processed.Load()), nil
}
