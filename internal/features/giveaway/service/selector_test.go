package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/utils/random"
)

func passAll(ctx context.Context, ids []int64) ([]int64, error) {
	return ids, nil
}

func TestWinnerSelector_Select(t *testing.T) {
	participants := []int64{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name    string
		winners int
		filter  EligibilityFilter
		wantLen int
		within  []int64
	}{
		{"fewer winners than pool", 3, passAll, 3, participants},
		{"more winners than pool", 10, passAll, 6, participants},
		{
			name:    "only eligible ids",
			winners: 5,
			filter: func(ctx context.Context, ids []int64) ([]int64, error) {
				return []int64{2, 4}, nil
			},
			wantLen: 2,
			within:  []int64{2, 4},
		},
		{
			name:    "verifier returns nothing",
			winners: 2,
			filter: func(ctx context.Context, ids []int64) ([]int64, error) {
				return nil, nil
			},
			wantLen: 0,
		},
		{
			name:    "duplicates and strangers are dropped",
			winners: 10,
			filter: func(ctx context.Context, ids []int64) ([]int64, error) {
				return []int64{3, 3, 99, 5}, nil
			},
			wantLen: 2,
			within:  []int64{3, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWinnerSelector(random.NewSeededSource(3))
			got, err := s.Select(context.Background(), participants, tt.winners, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Subset(t, tt.within, got)
			}

			seen := make(map[int64]bool)
			for _, id := range got {
				assert.False(t, seen[id], "duplicate winner %d", id)
				seen[id] = true
			}
		})
	}
}

func TestWinnerSelector_EmptyParticipantsSkipsVerifier(t *testing.T) {
	s := NewWinnerSelector(random.NewSeededSource(1))
	called := false
	got, err := s.Select(context.Background(), nil, 3, func(ctx context.Context, ids []int64) ([]int64, error) {
		called = true
		return ids, nil
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestWinnerSelector_VerifierFailure(t *testing.T) {
	s := NewWinnerSelector(random.NewSeededSource(1))
	cause := errors.New("timeout")

	got, err := s.Select(context.Background(), []int64{1, 2}, 1, func(ctx context.Context, ids []int64) ([]int64, error) {
		return []int64{1}, cause
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrCollaboratorFailure)
	assert.ErrorIs(t, err, cause)
}

func TestWinnerSelector_SameSeedSameWinners(t *testing.T) {
	participants := []int64{11, 22, 33, 44, 55, 66, 77}

	a, err := NewWinnerSelector(random.NewSeededSource(5)).Select(context.Background(), participants, 3, passAll)
	require.NoError(t, err)
	b, err := NewWinnerSelector(random.NewSeededSource(5)).Select(context.Background(), participants, 3, passAll)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
