package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGiveaway_Open(t *testing.T) {
	tests := []struct {
		name string
		g    Giveaway
		want bool
	}{
		{"active", Giveaway{EndsAt: now.Add(time.Minute)}, true},
		{"deadline reached", Giveaway{EndsAt: now}, false},
		{"ended", Giveaway{EndsAt: now.Add(time.Minute), Ended: true}, false},
		{"reopened by reroll", Giveaway{EndsAt: now.Add(time.Minute), Reopened: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.Open(now))
		})
	}
}

func TestGiveaway_ApplyNormalizesEndsAt(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	end := time.Date(2026, 3, 2, 15, 30, 0, 123456789, loc)

	g := Giveaway{EndsAt: now}
	g.Apply(GiveawayUpdate{EndsAt: &end})

	assert.Equal(t, time.UTC, g.EndsAt.Location())
	assert.True(t, end.Truncate(time.Millisecond).Equal(g.EndsAt))
	assert.Equal(t, 12, g.EndsAt.Hour())
}

func TestGiveaway_ApplyClampAndClone(t *testing.T) {
	g := Giveaway{WinnersCount: 5}
	maxEntries := 3
	g.Apply(GiveawayUpdate{MaxEntries: &maxEntries})
	g.ClampWinners()
	assert.Equal(t, 3, g.WinnersCount)

	c := g.Clone()
	*c.MaxEntries = 10
	assert.Equal(t, 3, *g.MaxEntries)
}
