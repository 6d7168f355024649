package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateRegistration(t *testing.T) {
	t.Run("known point", func(t *testing.T) {
		got, ok := EstimateRegistration(2768409)
		require.True(t, ok)
		assert.Equal(t, time.UnixMilli(1383264000000).UTC(), got)
	})

	t.Run("interpolated between neighbours", func(t *testing.T) {
		got, ok := EstimateRegistration(500000000)
		require.True(t, ok)
		assert.True(t, got.After(time.UnixMilli(1501459000000)))
		assert.True(t, got.Before(time.UnixMilli(1563208000000)))
	})

	t.Run("clamped outside the table", func(t *testing.T) {
		low, ok := EstimateRegistration(1)
		require.True(t, ok)
		assert.Equal(t, 2013, low.Year())

		high, ok := EstimateRegistration(9_000_000_000)
		require.True(t, ok)
		assert.Equal(t, time.UnixMilli(1634000000000).UTC(), high)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, ok := EstimateRegistration(-5)
		assert.False(t, ok)
	})
}

func TestAccountAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	age, ok := AccountAge(2768409, now)
	require.True(t, ok)
	assert.Greater(t, age, 12*365*24*time.Hour)

	_, ok = AccountAge(0, now)
	assert.False(t, ok)
}
