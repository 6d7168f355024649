package presenter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"giveaway-engine/internal/features/giveaway/models"
)

const (
	EventParticipantsChanged = "participants_changed"
	EventClosed              = "closed"

	DefaultStream = "giveaway:events"
)

// Stream publishes giveaway events to a Redis stream for the bot process
// that owns the chat messages.
type Stream struct {
	rdb    redis.UniversalClient
	stream string
	maxLen int64
}

func NewStream(rdb redis.UniversalClient, stream string, maxLen int64) *Stream {
	if stream == "" {
		stream = DefaultStream
	}
	return &Stream{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (s *Stream) OnParticipantCountChanged(ctx context.Context, g *models.Giveaway, count int) error {
	values := eventValues(EventParticipantsChanged, g)
	values["count"] = strconv.Itoa(count)
	return s.publish(ctx, values)
}

func (s *Stream) OnClosed(ctx context.Context, g *models.Giveaway, winnerIDs []int64) error {
	values := eventValues(EventClosed, g)
	values["winners"] = joinIDs(winnerIDs)
	return s.publish(ctx, values)
}

func (s *Stream) publish(ctx context.Context, values map[string]interface{}) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", values["type"], err)
	}
	return nil
}

func eventValues(eventType string, g *models.Giveaway) map[string]interface{} {
	return map[string]interface{}{
		"type":        eventType,
		"giveaway_id": g.ID,
		"guild_id":    strconv.FormatInt(g.GuildID, 10),
		"channel_id":  strconv.FormatInt(g.ChannelID, 10),
		"message_id":  strconv.FormatInt(g.MessageID, 10),
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
