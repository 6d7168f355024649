package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"giveaway-engine/internal/common/config"
	"giveaway-engine/internal/common/logger"

	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

type Client struct {
	db *sql.DB
}

// NewClient открывает пул lib/pq по STORE_DSN и проверяет соединение.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sql.Open("postgres", cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.Store.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Store.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Store.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info().
		Int("max_open_conns", cfg.Store.MaxOpenConns).
		Int("max_idle_conns", cfg.Store.MaxIdleConns).
		Dur("conn_max_lifetime", cfg.Store.ConnMaxLifetime).
		Msg("PostgreSQL store connected")

	return &Client{db: db}, nil
}

func (c *Client) GetDB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	stats := c.db.Stats()
	logger.Debug().Int("open", stats.OpenConnections).Int64("wait_count", stats.WaitCount).Msg("Closing PostgreSQL pool")
	return c.db.Close()
}
