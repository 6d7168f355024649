package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-engine/internal/common/errors"
)

type join struct {
	giveawayID string
	userID     int64
}

type fakeRegistrar struct {
	mu    sync.Mutex
	joins []join
	err   error
}

func (r *fakeRegistrar) Register(ctx context.Context, id string, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.joins = append(r.joins, join{id, userID})
	return len(r.joins), nil
}

func (r *fakeRegistrar) Joins() []join {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]join(nil), r.joins...)
}

func TestProcessMessage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		values  map[string]interface{}
		regErr  error
		wantErr bool
		joined  bool
	}{
		{"join", map[string]interface{}{"type": "join", "giveaway_id": "g1", "user_id": "42"}, nil, false, true},
		{"unknown type", map[string]interface{}{"type": "bot_removed", "channel_id": "1"}, nil, false, false},
		{"missing giveaway", map[string]interface{}{"type": "join", "user_id": "42"}, nil, true, false},
		{"bad user", map[string]interface{}{"type": "join", "giveaway_id": "g1", "user_id": "abc"}, nil, true, false},
		{"rejected join", map[string]interface{}{"type": "join", "giveaway_id": "g1", "user_id": "42"}, apperrors.NewAlreadyJoinedError("g1", 42), false, false},
		{"store failure", map[string]interface{}{"type": "join", "giveaway_id": "g1", "user_id": "42"}, apperrors.NewCollaboratorError("insert", errors.New("db down")), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrar{err: tt.regErr}
			w := NewJoinStreamWorker(nil, reg, JoinStreamConfig{})

			err := w.ProcessMessage(ctx, tt.values)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.joined {
				assert.Equal(t, []join{{"g1", 42}}, reg.Joins())
			} else {
				assert.Empty(t, reg.Joins())
			}
		})
	}
}

func TestJoinStreamWorker_ConsumesAndAcks(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := &fakeRegistrar{}
	w := NewJoinStreamWorker(rdb, reg, JoinStreamConfig{Stream: "joins", Block: 20 * time.Millisecond})

	// the group is created from "$", so the worker only sees later entries
	require.NoError(t, rdb.XGroupCreateMkStream(context.Background(), "joins", DefaultGroup, "$").Err())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	for _, user := range []string{"1", "2"} {
		require.NoError(t, rdb.XAdd(context.Background(), &redis.XAddArgs{
			Stream: "joins",
			Values: map[string]interface{}{"type": "join", "giveaway_id": "g1", "user_id": user},
		}).Err())
	}

	assert.Eventually(t, func() bool {
		return len(reg.Joins()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	pending, err := rdb.XPending(context.Background(), "joins", DefaultGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
	assert.ElementsMatch(t, []join{{"g1", 1}, {"g1", 2}}, reg.Joins())
}

func TestJoinStreamWorker_RecoversPendingEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	bg := context.Background()

	require.NoError(t, rdb.XGroupCreateMkStream(bg, "joins", DefaultGroup, "$").Err())
	for _, user := range []string{"7", "8"} {
		require.NoError(t, rdb.XAdd(bg, &redis.XAddArgs{
			Stream: "joins",
			Values: map[string]interface{}{"type": "join", "giveaway_id": "g1", "user_id": user},
		}).Err())
	}

	// a previous run received both entries and stopped before acking them
	delivered, err := rdb.XReadGroup(bg, &redis.XReadGroupArgs{
		Group:    DefaultGroup,
		Consumer: DefaultConsumer,
		Streams:  []string{"joins", ">"},
		Block:    -1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, delivered[0].Messages, 2)

	pending, err := rdb.XPending(bg, "joins", DefaultGroup).Result()
	require.NoError(t, err)
	require.EqualValues(t, 2, pending.Count)

	reg := &fakeRegistrar{}
	w := NewJoinStreamWorker(rdb, reg, JoinStreamConfig{Stream: "joins", Block: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(bg)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	assert.Eventually(t, func() bool {
		return len(reg.Joins()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	pending, err = rdb.XPending(bg, "joins", DefaultGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
	assert.Equal(t, []join{{"g1", 7}, {"g1", 8}}, reg.Joins())
}
