package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/repository/memory"
	"giveaway-engine/internal/utils/random"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubVerifier passes everyone unless configured otherwise.
type stubVerifier struct {
	mu       sync.Mutex
	calls    int
	err      error
	rejected map[int64]bool
}

func (v *stubVerifier) Verify(ctx context.Context, g *models.Giveaway, ids []int64) ([]int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !v.rejected[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (v *stubVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type closedEvent struct {
	GiveawayID string
	Winners    []int64
}

type recordingPresenter struct {
	mu       sync.Mutex
	counts   []int
	closed   []closedEvent
	countErr error
	closeErr error
}

func (p *recordingPresenter) OnParticipantCountChanged(ctx context.Context, g *models.Giveaway, count int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts = append(p.counts, count)
	return p.countErr
}

func (p *recordingPresenter) OnClosed(ctx context.Context, g *models.Giveaway, winners []int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, closedEvent{GiveawayID: g.ID, Winners: winners})
	return p.closeErr
}

func (p *recordingPresenter) Closed() []closedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]closedEvent(nil), p.closed...)
}

func (p *recordingPresenter) Counts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.counts...)
}

// flakyStore fails selected operations on top of the memory store.
type flakyStore struct {
	repository.Store
	failSetWinners bool
	failList       bool
}

var errStoreDown = errors.New("store is down")

func (s *flakyStore) SetWinners(ctx context.Context, id string, winners []int64) error {
	if s.failSetWinners {
		return errStoreDown
	}
	return s.Store.SetWinners(ctx, id, winners)
}

func (s *flakyStore) ListParticipants(ctx context.Context, id string) ([]models.Participant, error) {
	if s.failList {
		return nil, errStoreDown
	}
	return s.Store.ListParticipants(ctx, id)
}

// reopenHookStore runs hook right after a reroll reopened the giveaway,
// before the closure runs again.
type reopenHookStore struct {
	repository.Store
	hook func(ctx context.Context, id string)
}

func (s *reopenHookStore) Reopen(ctx context.Context, id string) (bool, error) {
	ok, err := s.Store.Reopen(ctx, id)
	if ok && err == nil && s.hook != nil {
		s.hook(ctx, id)
	}
	return ok, err
}

type testEnv struct {
	svc       GiveawayService
	store     repository.Store
	clock     *fakeClock
	verifier  *stubVerifier
	presenter *recordingPresenter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.NewRepository())
}

func newTestEnvWithStore(t *testing.T, store repository.Store) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     store,
		clock:     newFakeClock(),
		verifier:  &stubVerifier{},
		presenter: &recordingPresenter{},
	}
	selector := NewWinnerSelector(random.NewSeededSource(1))
	env.svc = NewGiveawayService(store, selector, env.verifier, env.presenter, WithClock(env.clock.Now))
	return env
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func (e *testEnv) draft(winners int, maxEntries *int) models.GiveawayDraft {
	return models.GiveawayDraft{
		GuildID:      10,
		ChannelID:    20,
		MessageID:    30,
		Name:         "Nitro drop",
		Description:  "One month of nitro",
		MaxEntries:   maxEntries,
		WinnersCount: winners,
		EndsAt:       e.clock.Now().Add(time.Hour),
	}
}

func (e *testEnv) create(t *testing.T, winners int, maxEntries *int) *models.Giveaway {
	t.Helper()
	g, err := e.svc.Create(context.Background(), e.draft(winners, maxEntries))
	require.NoError(t, err)
	return g
}

func (e *testEnv) join(t *testing.T, id string, users ...int64) {
	t.Helper()
	for _, u := range users {
		_, err := e.svc.Register(context.Background(), id, u)
		require.NoError(t, err)
	}
}
