package dto

import (
	"time"

	"giveaway-engine/internal/features/giveaway/models"
)

// GiveawayCreateRequest is the body of POST /guilds/{guild_id}/giveaways
type GiveawayCreateRequest struct {
	ChannelID    int64     `json:"channel_id"`
	MessageID    int64     `json:"message_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        *int      `json:"color,omitempty"`
	MaxEntries   *int      `json:"max_entries,omitempty"`
	WinnersCount int       `json:"winners_count"`
	EndsAt       time.Time `json:"ends_at" example:"2026-12-31T18:00:00Z"`
}

func (r GiveawayCreateRequest) Draft(guildID int64) models.GiveawayDraft {
	return models.GiveawayDraft{
		GuildID:      guildID,
		ChannelID:    r.ChannelID,
		MessageID:    r.MessageID,
		Name:         r.Name,
		Description:  r.Description,
		Color:        r.Color,
		MaxEntries:   r.MaxEntries,
		WinnersCount: r.WinnersCount,
		EndsAt:       r.EndsAt,
	}
}

// GiveawayUpdateRequest is a partial edit, absent fields stay untouched.
type GiveawayUpdateRequest struct {
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	Color        *int       `json:"color,omitempty"`
	MaxEntries   *int       `json:"max_entries,omitempty"`
	WinnersCount *int       `json:"winners_count,omitempty"`
}

func (r GiveawayUpdateRequest) Update() models.GiveawayUpdate {
	return models.GiveawayUpdate{
		Name:         r.Name,
		Description:  r.Description,
		EndsAt:       r.EndsAt,
		Color:        r.Color,
		MaxEntries:   r.MaxEntries,
		WinnersCount: r.WinnersCount,
	}
}

// JoinRequest carries the user id when init data auth is disabled.
type JoinRequest struct {
	UserID int64 `json:"user_id"`
}

type JoinResponse struct {
	GiveawayID   string `json:"giveaway_id"`
	UserID       int64  `json:"user_id"`
	Participants int    `json:"participants"`
}

type RerollResponse struct {
	GiveawayID string  `json:"giveaway_id"`
	Winners    []int64 `json:"winners"`
}

type ParticipantsResponse struct {
	GiveawayID   string               `json:"giveaway_id"`
	Total        int                  `json:"total"`
	Participants []models.Participant `json:"participants"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}
