package models

import (
	"time"
)

// DefaultColor is used when a giveaway is created without an explicit color.
const DefaultColor = 0x9933ff

type Giveaway struct {
	ID           string    `json:"id"`
	GuildID      int64     `json:"guild_id"`
	ChannelID    int64     `json:"channel_id"`
	MessageID    int64     `json:"message_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        int       `json:"color"`
	MaxEntries   *int      `json:"max_entries,omitempty"`
	WinnersCount int       `json:"winners_count"`
	EndsAt       time.Time `json:"ends_at"`
	Ended        bool      `json:"ended"`
	// Reopened is set only while a reroll re-runs the closure.
	Reopened bool `json:"-"`
}

// Expired reports whether the deadline has passed at now, regardless of
// whether the giveaway was closed yet.
func (g *Giveaway) Expired(now time.Time) bool {
	return !g.EndsAt.After(now)
}

// Open reports whether the giveaway still accepts participants and edits at
// now. A giveaway reopened by a reroll is never open.
func (g *Giveaway) Open(now time.Time) bool {
	return !g.Ended && !g.Reopened && !g.Expired(now)
}

// ClampWinners caps WinnersCount at MaxEntries when both are set.
func (g *Giveaway) ClampWinners() {
	if g.MaxEntries != nil && g.WinnersCount > *g.MaxEntries {
		g.WinnersCount = *g.MaxEntries
	}
}

// Apply merges every non-nil field of u into g.
func (g *Giveaway) Apply(u GiveawayUpdate) {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.EndsAt != nil {
		g.EndsAt = u.EndsAt.UTC().Truncate(time.Millisecond)
	}
	if u.Color != nil {
		g.Color = *u.Color
	}
	if u.MaxEntries != nil {
		v := *u.MaxEntries
		g.MaxEntries = &v
	}
	if u.WinnersCount != nil {
		g.WinnersCount = *u.WinnersCount
	}
}

// Clone returns a deep copy, so stores never hand out shared pointers.
func (g *Giveaway) Clone() *Giveaway {
	c := *g
	if g.MaxEntries != nil {
		v := *g.MaxEntries
		c.MaxEntries = &v
	}
	return &c
}

// GiveawayDraft holds everything needed to create a giveaway.
type GiveawayDraft struct {
	GuildID      int64     `json:"guild_id"`
	ChannelID    int64     `json:"channel_id"`
	MessageID    int64     `json:"message_id"`
	Name         string    `json:"name" validate:"giveaway_name"`
	Description  string    `json:"description" validate:"giveaway_description"`
	Color        *int      `json:"color,omitempty" validate:"omitempty,gte=0"`
	MaxEntries   *int      `json:"max_entries,omitempty" validate:"omitempty,min=1"`
	WinnersCount int       `json:"winners_count" validate:"min=1"`
	EndsAt       time.Time `json:"ends_at"`
}

// GiveawayUpdate is a partial edit. Nil fields are left untouched.
type GiveawayUpdate struct {
	Name         *string    `json:"name,omitempty" validate:"omitempty,giveaway_name"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,giveaway_description"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	Color        *int       `json:"color,omitempty" validate:"omitempty,gte=0"`
	MaxEntries   *int       `json:"max_entries,omitempty" validate:"omitempty,min=1"`
	WinnersCount *int       `json:"winners_count,omitempty" validate:"omitempty,min=1"`
}

func (u GiveawayUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.Description == nil &&
		u.EndsAt == nil &&
		u.Color == nil &&
		u.MaxEntries == nil &&
		u.WinnersCount == nil
}

// ListFilter narrows ListGiveaways. Zero value lists everything.
type ListFilter struct {
	ActiveOnly bool
	GuildID    *int64
}
