package redis

import (
	"context"
	"fmt"

	"giveaway-engine/internal/common/config"
	"giveaway-engine/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis client to allow future extensions.
type Client struct {
	*redis.Client
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, addr, password string, db int) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &Client{Client: c}, nil
}

func OpenFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	c, err := Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr(), err)
	}
	logger.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.Redis.DB).Msg("Redis client initialized")
	return c, nil
}
