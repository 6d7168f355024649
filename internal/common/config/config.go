package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
		Port            int           `env:"PORT" envDefault:"8080"`
		Origins         []string      `env:"ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Store struct {
		Driver          string        `env:"STORE_DRIVER" envDefault:"memory"`
		DSN             string        `env:"STORE_DSN"`
		MaxOpenConns    int           `env:"STORE_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"STORE_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"STORE_CONN_MAX_LIFETIME" envDefault:"5m"`
	}

	Redis struct {
		Enabled      bool   `env:"REDIS_ENABLED" envDefault:"false"`
		Host         string `env:"REDIS_HOST" envDefault:"localhost"`
		Port         int    `env:"REDIS_PORT" envDefault:"6379"`
		Password     string `env:"REDIS_PASSWORD" envDefault:""`
		DB           int    `env:"REDIS_DB" envDefault:"0"`
		Stream       string `env:"REDIS_EVENTS_STREAM" envDefault:"giveaway:events"`
		StreamMaxLen int64  `env:"REDIS_EVENTS_MAXLEN" envDefault:"10000"`
		// Join events published by the bot, consumed through a group.
		JoinStream   string `env:"REDIS_JOIN_STREAM" envDefault:"giveaway:joins"`
		ConsumerName string `env:"REDIS_CONSUMER_NAME" envDefault:"giveaway_worker_1"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN"`
		Debug    bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`
		// Join requests must carry Telegram Mini App init data.
		InitDataAuth      bool          `env:"TELEGRAM_INIT_DATA_AUTH" envDefault:"false"`
		InitDataExpiry    time.Duration `env:"TELEGRAM_INIT_DATA_EXPIRY" envDefault:"24h"`
		PresenterEnabled  bool          `env:"TELEGRAM_PRESENTER" envDefault:"false"`
		MembershipChecked bool          `env:"TELEGRAM_CHECK_MEMBERSHIP" envDefault:"false"`
		// Management routes require init data of one of these users. Empty
		// leaves them open, the host is expected to guard them.
		AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
		// Accounts estimated younger than this cannot win, 0 disables the rule.
		MinAccountAge time.Duration `env:"TELEGRAM_MIN_ACCOUNT_AGE" envDefault:"0s"`
	}

	Scheduler struct {
		Interval      time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"60s"`
		MaxConcurrent int           `env:"SCHEDULER_MAX_CONCURRENT" envDefault:"5"`
		UseLease      bool          `env:"SCHEDULER_USE_LEASE" envDefault:"false"`
	}

	Tracing struct {
		Endpoint string `env:"OTEL_ENDPOINT"`
	}
}

// RedisAddr returns the host:port pair for the redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DSN is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	needsBot := c.Telegram.InitDataAuth || c.Telegram.PresenterEnabled || c.Telegram.MembershipChecked ||
		len(c.Telegram.AdminIDs) > 0
	if needsBot && c.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required when telegram features are enabled")
	}
	if c.Scheduler.UseLease && !c.Redis.Enabled {
		return fmt.Errorf("SCHEDULER_USE_LEASE requires REDIS_ENABLED")
	}
	if c.Telegram.MinAccountAge < 0 {
		return fmt.Errorf("TELEGRAM_MIN_ACCOUNT_AGE must not be negative")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if c.Scheduler.MaxConcurrent < 1 {
		return fmt.Errorf("SCHEDULER_MAX_CONCURRENT must be at least 1")
	}
	return nil
}

func Load() (*Config, error) {
	// .env is optional, in production variables come from the environment
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
