package models

import "time"

type Participant struct {
	GiveawayID string    `json:"giveaway_id"`
	UserID     int64     `json:"user_id"`
	Winner     bool      `json:"winner"`
	CreatedAt  time.Time `json:"created_at"`
}

// ParticipantIDs extracts user ids in list order.
func ParticipantIDs(ps []Participant) []int64 {
	ids := make([]int64, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.UserID)
	}
	return ids
}

// WinnerIDs extracts the user ids flagged as winners.
func WinnerIDs(ps []Participant) []int64 {
	var ids []int64
	for _, p := range ps {
		if p.Winner {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
