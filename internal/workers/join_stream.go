package workers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/common/logger"
)

const (
	DefaultJoinStream = "giveaway:joins"
	DefaultGroup      = "giveaway_engine"
	DefaultConsumer   = "giveaway_worker_1"

	eventJoin = "join"
	readBatch = 10
)

// Registrar is the part of the giveaway service the worker drives.
type Registrar interface {
	Register(ctx context.Context, id string, userID int64) (int, error)
}

type JoinStreamConfig struct {
	Stream   string
	Group    string
	Consumer string
	// Block is how long one XREADGROUP waits for new entries.
	Block time.Duration
}

// JoinStreamWorker registers participants from join events that the bot
// publishes when a user presses the join button in the chat.
type JoinStreamWorker struct {
	rdb       redis.UniversalClient
	registrar Registrar
	cfg       JoinStreamConfig
	log       zerolog.Logger
}

func NewJoinStreamWorker(rdb redis.UniversalClient, registrar Registrar, cfg JoinStreamConfig) *JoinStreamWorker {
	if cfg.Stream == "" {
		cfg.Stream = DefaultJoinStream
	}
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.Consumer == "" {
		cfg.Consumer = DefaultConsumer
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	return &JoinStreamWorker{
		rdb:       rdb,
		registrar: registrar,
		cfg:       cfg,
		log:       logger.Component("join_stream"),
	}
}

// Start consumes the stream until ctx is cancelled. Entries this consumer
// received earlier but never acknowledged are processed first.
func (w *JoinStreamWorker) Start(ctx context.Context) {
	// Ensure consumer group exists
	err := w.rdb.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		w.log.Error().Err(err).Str("stream", w.cfg.Stream).Msg("Error creating consumer group")
	}

	w.log.Info().Str("stream", w.cfg.Stream).Str("group", w.cfg.Group).Msg("Starting join stream worker")

	w.drainPending(ctx)

	for {
		if ctx.Err() != nil {
			w.log.Info().Msg("Stopping join stream worker")
			return
		}

		entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, ">"},
			Count:    readBatch,
			Block:    w.cfg.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Error reading from stream")
			// backoff on error
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		w.handle(ctx, entries)
	}
}

// drainPending walks this consumer's pending list from the start. Reading
// history never blocks, an empty batch means the list is exhausted.
func (w *JoinStreamWorker) drainPending(ctx context.Context) {
	cursor := "0"
	drained := 0
	for ctx.Err() == nil {
		entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, cursor},
			Count:    readBatch,
			Block:    -1,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("Error reading pending join events")
			}
			break
		}

		last, n := w.handle(ctx, entries)
		if n == 0 {
			break
		}
		drained += n
		cursor = last
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Recovered pending join events")
	}
}

// handle processes and acknowledges a batch. It returns the last entry id
// and the number of entries seen.
func (w *JoinStreamWorker) handle(ctx context.Context, streams []redis.XStream) (string, int) {
	var (
		last string
		n    int
	)
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			last = msg.ID
			n++
			if err := w.ProcessMessage(ctx, msg.Values); err != nil {
				w.log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to process join event")
			}
			if err := w.rdb.XAck(ctx, w.cfg.Stream, w.cfg.Group, msg.ID).Err(); err != nil {
				w.log.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to ack join event")
			}
		}
	}
	return last, n
}

// ProcessMessage handles one stream entry. Rejections such as a repeated
// join are expected and only logged, errors are returned for malformed
// events and store failures.
func (w *JoinStreamWorker) ProcessMessage(ctx context.Context, values map[string]interface{}) error {
	eventType, _ := values["type"].(string)
	if eventType != eventJoin {
		w.log.Debug().Str("type", eventType).Msg("Skipping unknown event")
		return nil
	}

	giveawayID, ok := values["giveaway_id"].(string)
	if !ok || giveawayID == "" {
		return fmt.Errorf("join event without giveaway_id: %v", values)
	}
	userIDStr, _ := values["user_id"].(string)
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("join event with invalid user_id %q", userIDStr)
	}

	count, err := w.registrar.Register(ctx, giveawayID, userID)
	if err != nil {
		appErr, ok := apperrors.AsAppError(err)
		if ok && !appErr.IsInternal() {
			w.log.Info().
				Str("giveaway_id", giveawayID).
				Int64("user_id", userID).
				Str("reason", string(appErr.Code)).
				Msg("Join rejected")
			return nil
		}
		return fmt.Errorf("register user %d in %s: %w", userID, giveawayID, err)
	}

	w.log.Debug().Str("giveaway_id", giveawayID).Int64("user_id", userID).Int("count", count).Msg("Join processed")
	return nil
}
