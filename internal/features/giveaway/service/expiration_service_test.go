package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/models"
)

type staticLister struct {
	giveaways []*models.Giveaway
	err       error
}

func (l *staticLister) List(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.giveaways, nil
}

type closerFunc func(ctx context.Context, id string) error

func (f closerFunc) Close(ctx context.Context, id string) error { return f(ctx, id) }

type stubLocker struct {
	mu       sync.Mutex
	held     bool
	err      error
	released int
}

func (l *stubLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		l.released++
		return nil
	}, true, nil
}

func expiredAt(id string, endsAt time.Time) *models.Giveaway {
	return &models.Giveaway{ID: id, EndsAt: endsAt, WinnersCount: 1}
}

func TestExpiryScheduler_ScenarioThreeOfFive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.create(t, 3, intPtr(5))
	users := []int64{101, 102, 103, 104, 105}
	env.join(t, g.ID, users...)

	scheduler := NewExpiryScheduler(env.svc, env.svc, SchedulerConfig{Now: env.clock.Now})

	processed, err := scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed, "nothing expired yet")

	env.clock.Advance(time.Hour)
	processed, err = scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := env.store.GetGiveaway(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.Ended)

	ps, err := env.store.ListParticipants(ctx, g.ID)
	require.NoError(t, err)
	winners := models.WinnerIDs(ps)
	assert.Len(t, winners, 3)
	assert.Subset(t, users, winners)

	// ended giveaways are no longer listed, the next tick is a no-op
	processed, err = scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Len(t, env.presenter.Closed(), 1)
}

func TestExpiryScheduler_IsolatesFailures(t *testing.T) {
	now := baseTime
	lister := &staticLister{giveaways: []*models.Giveaway{
		expiredAt("a", now.Add(-time.Minute)),
		expiredAt("boom", now.Add(-time.Minute)),
		expiredAt("panic", now.Add(-time.Minute)),
		expiredAt("b", now),
		expiredAt("future", now.Add(time.Minute)),
	}}

	var (
		mu     sync.Mutex
		closed []string
	)
	closer := closerFunc(func(ctx context.Context, id string) error {
		mu.Lock()
		closed = append(closed, id)
		mu.Unlock()
		switch id {
		case "boom":
			return errors.New("store unavailable")
		case "panic":
			panic("unexpected")
		}
		return nil
	})

	scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{
		MaxConcurrent: 2,
		Now:           func() time.Time { return now },
	})

	processed, err := scheduler.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.ElementsMatch(t, []string{"a", "boom", "panic", "b"}, closed)
}

func TestExpiryScheduler_ListFailure(t *testing.T) {
	scheduler := NewExpiryScheduler(&staticLister{err: errors.New("db down")}, closerFunc(func(context.Context, string) error {
		t.Fatal("close must not be called")
		return nil
	}), SchedulerConfig{})

	_, err := scheduler.Tick(context.Background())
	assert.Error(t, err)
}

func TestExpiryScheduler_BoundedConcurrency(t *testing.T) {
	now := baseTime
	var giveaways []*models.Giveaway
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		giveaways = append(giveaways, expiredAt(id, now.Add(-time.Second)))
	}

	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	closer := closerFunc(func(ctx context.Context, id string) error {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return nil
	})

	scheduler := NewExpiryScheduler(&staticLister{giveaways: giveaways}, closer, SchedulerConfig{
		MaxConcurrent: 2,
		Now:           func() time.Time { return now },
	})

	processed, err := scheduler.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, processed)
	assert.LessOrEqual(t, peak, 2)
}

func TestExpiryScheduler_Lease(t *testing.T) {
	now := baseTime
	lister := &staticLister{giveaways: []*models.Giveaway{expiredAt("a", now.Add(-time.Second))}}

	var calls int
	closer := closerFunc(func(ctx context.Context, id string) error {
		calls++
		return nil
	})

	t.Run("held elsewhere skips the tick", func(t *testing.T) {
		calls = 0
		locker := &stubLocker{held: true}
		scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{Locker: locker, Now: func() time.Time { return now }})

		processed, err := scheduler.Tick(context.Background())
		require.NoError(t, err)
		assert.Zero(t, processed)
		assert.Zero(t, calls)
	})

	t.Run("acquired and released", func(t *testing.T) {
		calls = 0
		locker := &stubLocker{}
		scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{Locker: locker, Now: func() time.Time { return now }})

		processed, err := scheduler.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		assert.Equal(t, 1, locker.released)
		assert.False(t, locker.held)
	})

	t.Run("lock backend failure still ticks", func(t *testing.T) {
		calls = 0
		locker := &stubLocker{err: errors.New("redis down")}
		scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{Locker: locker, Now: func() time.Time { return now }})

		processed, err := scheduler.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, processed)
	})
}

func TestExpiryScheduler_StartStop(t *testing.T) {
	now := baseTime
	lister := &staticLister{giveaways: []*models.Giveaway{expiredAt("a", now.Add(-time.Second))}}

	ticked := make(chan string, 10)
	closer := closerFunc(func(ctx context.Context, id string) error {
		ticked <- id
		return nil
	})

	scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{
		Interval: time.Hour,
		Now:      func() time.Time { return now },
	})

	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.Running())
	assert.ErrorIs(t, scheduler.Start(context.Background()), ErrSchedulerRunning)

	select {
	case id := <-ticked:
		assert.Equal(t, "a", id)
	case <-time.After(2 * time.Second):
		t.Fatal("first tick did not run on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(ctx))
	assert.False(t, scheduler.Running())

	// stopping twice is fine
	require.NoError(t, scheduler.Stop(ctx))
}

func TestExpiryScheduler_StopDrainsInFlightClosures(t *testing.T) {
	now := baseTime
	lister := &staticLister{giveaways: []*models.Giveaway{expiredAt("slow", now.Add(-time.Second))}}

	started := make(chan struct{})
	release := make(chan struct{})
	var closeErr error
	finished := make(chan struct{})
	closer := closerFunc(func(ctx context.Context, id string) error {
		close(started)
		<-release
		closeErr = ctx.Err()
		close(finished)
		return nil
	})

	scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{
		Interval: time.Hour,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, scheduler.Start(context.Background()))
	<-started

	stopped := make(chan error, 1)
	go func() {
		stopped <- scheduler.Stop(context.Background())
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned before the in-flight closure finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stopped)
	<-finished
	assert.NoError(t, closeErr, "in-flight closure must not see cancellation")
}

func TestExpiryScheduler_StopTimeout(t *testing.T) {
	now := baseTime
	lister := &staticLister{giveaways: []*models.Giveaway{expiredAt("stuck", now.Add(-time.Second))}}

	started := make(chan struct{})
	release := make(chan struct{})
	closer := closerFunc(func(ctx context.Context, id string) error {
		close(started)
		<-release
		return nil
	})

	scheduler := NewExpiryScheduler(lister, closer, SchedulerConfig{Interval: time.Hour, Now: func() time.Time { return now }})
	require.NoError(t, scheduler.Start(context.Background()))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, scheduler.Stop(ctx), context.DeadlineExceeded)

	close(release)
}
