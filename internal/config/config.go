// Package config defines the top-level configuration for the pair bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PAIRBOT_* environment variables.
type Config struct {
	Feed     FeedConfig     `toml:"feed"`
	Session  SessionConfig  `toml:"session"`
	Detector DetectorConfig `toml:"detector"`
	Scalp    ScalpConfig    `toml:"scalp"`
	Executor ExecutorConfig `toml:"executor"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Notify   NotifyConfig   `toml:"notify"`
	Markets  []MarketConfig `toml:"markets"`
	LogLevel string         `toml:"log_level"`
}

// FeedConfig holds the market-data websocket endpoint.
type FeedConfig struct {
	WsHost string `toml:"ws_host"`
	// PingInterval is the keepalive ping cadence on the feed connection.
	PingInterval duration `toml:"ping_interval"`
}

// SessionConfig controls the subscription session lifecycle.
type SessionConfig struct {
	// TickInterval is the housekeeping cadence for position expiry and
	// exit checks.
	TickInterval duration `toml:"tick_interval"`
	// RefreshInterval is the pause between a session ending and the next
	// one being built from a fresh market set.
	RefreshInterval duration `toml:"refresh_interval"`
	// ArchiveSessions enables end-of-session book dumps to blob storage.
	ArchiveSessions bool `toml:"archive_sessions"`
}

// DetectorConfig holds arbitrage detection parameters.
type DetectorConfig struct {
	// ProfitThreshold is the minimum profit fraction (1 - yes_ask - no_ask)
	// for an opportunity to be reported.
	ProfitThreshold float64 `toml:"profit_threshold"`
}

// ScalpConfig holds momentum detection and position parameters.
type ScalpConfig struct {
	Enabled bool `toml:"enabled"`
	// ThresholdPct is the fractional mid-price move since the previous
	// observation that triggers a signal.
	ThresholdPct    float64  `toml:"threshold_pct"`
	OrderSize       float64  `toml:"order_size"`
	TakeProfitPct   float64  `toml:"take_profit_pct"`
	StopLossPct     float64  `toml:"stop_loss_pct"`
	MaxHold         duration `toml:"max_hold"`
	MaxTradesPerDay int      `toml:"max_trades_per_day"`
}

// ExecutorConfig holds execution pipeline parameters.
type ExecutorConfig struct {
	Workers    int     `toml:"workers"`
	QueueSize  int     `toml:"queue_size"`
	RatePerSec float64 `toml:"rate_per_sec"`
	Burst      int     `toml:"burst"`
	// Cooldown suppresses repeat arbitrage executions on the same market.
	Cooldown duration `toml:"cooldown"`
	// ExecutionSpread is the stricter gate applied before placing arbitrage
	// orders: total cost must not exceed 1 - execution_spread.
	ExecutionSpread float64 `toml:"execution_spread"`
	MinYesPrice     float64 `toml:"min_yes_price"`
	MinNoPrice      float64 `toml:"min_no_price"`
	// KillSwitch pauses execution handoff entirely: every intent, including
	// scalp exits, is discarded while the switch is on. Detection keeps
	// running so the stream stays warm.
	KillSwitch bool `toml:"kill_switch"`
}

// RedisConfig holds Redis connection parameters for the book mirror and
// signal bus. Optional: when Enabled is false the bot runs without Redis.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	BookTTL    duration `toml:"book_ttl"`
}

// PostgresConfig holds connection parameters for the opportunity journal.
// Optional: when Enabled is false no journal is kept.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for session
// archives. Optional: when Enabled is false archiving is skipped.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// NotifyConfig holds notification channel credentials. A channel is enabled
// by filling in its credentials; Events filters which event types are sent.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// MarketConfig is one statically configured market pair. The bot subscribes
// to both instrument books and pairs their updates by market.
type MarketConfig struct {
	MarketID   string `toml:"market_id"`
	Question   string `toml:"question"`
	YesTokenID string `toml:"yes_token_id"`
	NoTokenID  string `toml:"no_token_id"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "90s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "90s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Feed: FeedConfig{
			WsHost:       "wss://ws-subscriptions-clob.polymarket.com",
			PingInterval: duration{10 * time.Second},
		},
		Session: SessionConfig{
			TickInterval:    duration{1 * time.Second},
			RefreshInterval: duration{5 * time.Second},
			ArchiveSessions: false,
		},
		Detector: DetectorConfig{
			ProfitThreshold: 0.001,
		},
		Scalp: ScalpConfig{
			Enabled:         false,
			ThresholdPct:    0.01,
			OrderSize:       1.0,
			TakeProfitPct:   1.0,
			StopLossPct:     0.5,
			MaxHold:         duration{90 * time.Second},
			MaxTradesPerDay: 5,
		},
		Executor: ExecutorConfig{
			Workers:         2,
			QueueSize:       256,
			RatePerSec:      5,
			Burst:           5,
			Cooldown:        duration{2 * time.Second},
			ExecutionSpread: 0.01,
			MinYesPrice:     0.0,
			MinNoPrice:      0.0,
			KillSwitch:      false,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
			BookTTL:    duration{5 * time.Minute},
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "pairbot",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "pairbot-data",
			UseSSL:         false,
			ForcePathStyle: true,
			Prefix:         "sessions",
		},
		Notify: NotifyConfig{
			Events: []string{"arb_executed", "execution_failed"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Feed
	if c.Feed.WsHost == "" {
		errs = append(errs, "feed: ws_host must not be empty")
	}

	// Session
	if c.Session.TickInterval.Duration <= 0 {
		errs = append(errs, "session: tick_interval must be > 0")
	}
	if c.Session.RefreshInterval.Duration < 0 {
		errs = append(errs, "session: refresh_interval must be >= 0")
	}
	if c.Session.ArchiveSessions && !c.S3.Enabled {
		errs = append(errs, "session: archive_sessions requires s3.enabled = true")
	}

	// Detector
	if c.Detector.ProfitThreshold < 0 {
		errs = append(errs, "detector: profit_threshold must be >= 0")
	}

	// Scalp
	if c.Scalp.Enabled {
		if c.Scalp.ThresholdPct <= 0 {
			errs = append(errs, "scalp: threshold_pct must be > 0 when enabled")
		}
		if c.Scalp.OrderSize <= 0 {
			errs = append(errs, "scalp: order_size must be > 0 when enabled")
		}
		if c.Scalp.MaxHold.Duration <= 0 {
			errs = append(errs, "scalp: max_hold must be > 0 when enabled")
		}
		if c.Scalp.MaxTradesPerDay < 1 {
			errs = append(errs, "scalp: max_trades_per_day must be >= 1 when enabled")
		}
	}

	// Executor
	if c.Executor.Workers < 1 {
		errs = append(errs, "executor: workers must be >= 1")
	}
	if c.Executor.QueueSize < 1 {
		errs = append(errs, "executor: queue_size must be >= 1")
	}
	if c.Executor.RatePerSec <= 0 {
		errs = append(errs, "executor: rate_per_sec must be > 0")
	}
	if c.Executor.ExecutionSpread < 0 || c.Executor.ExecutionSpread >= 1 {
		errs = append(errs, fmt.Sprintf("executor: execution_spread must be in [0, 1), got %g", c.Executor.ExecutionSpread))
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Markets
	if len(c.Markets) == 0 {
		errs = append(errs, "markets: at least one [[markets]] entry is required")
	}
	for i, m := range c.Markets {
		if m.MarketID == "" {
			errs = append(errs, fmt.Sprintf("markets[%d]: market_id must not be empty", i))
		}
		if m.YesTokenID == "" || m.NoTokenID == "" {
			errs = append(errs, fmt.Sprintf("markets[%d]: yes_token_id and no_token_id must not be empty", i))
		}
		if m.YesTokenID != "" && m.YesTokenID == m.NoTokenID {
			errs = append(errs, fmt.Sprintf("markets[%d]: yes_token_id and no_token_id must differ", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
