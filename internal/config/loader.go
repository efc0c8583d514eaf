package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PAIRBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PAIRBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Feed ──
	setStr(&cfg.Feed.WsHost, "PAIRBOT_FEED_WS_HOST")
	setDuration(&cfg.Feed.PingInterval, "PAIRBOT_FEED_PING_INTERVAL")

	// ── Session ──
	setDuration(&cfg.Session.TickInterval, "PAIRBOT_SESSION_TICK_INTERVAL")
	setDuration(&cfg.Session.RefreshInterval, "PAIRBOT_SESSION_REFRESH_INTERVAL")
	setBool(&cfg.Session.ArchiveSessions, "PAIRBOT_SESSION_ARCHIVE_SESSIONS")

	// ── Detector ──
	setFloat64(&cfg.Detector.ProfitThreshold, "PAIRBOT_DETECTOR_PROFIT_THRESHOLD")

	// ── Scalp ──
	setBool(&cfg.Scalp.Enabled, "PAIRBOT_SCALP_ENABLED")
	setFloat64(&cfg.Scalp.ThresholdPct, "PAIRBOT_SCALP_THRESHOLD_PCT")
	setFloat64(&cfg.Scalp.OrderSize, "PAIRBOT_SCALP_ORDER_SIZE")
	setFloat64(&cfg.Scalp.TakeProfitPct, "PAIRBOT_SCALP_TAKE_PROFIT_PCT")
	setFloat64(&cfg.Scalp.StopLossPct, "PAIRBOT_SCALP_STOP_LOSS_PCT")
	setDuration(&cfg.Scalp.MaxHold, "PAIRBOT_SCALP_MAX_HOLD")
	setInt(&cfg.Scalp.MaxTradesPerDay, "PAIRBOT_SCALP_MAX_TRADES_PER_DAY")

	// ── Executor ──
	setInt(&cfg.Executor.Workers, "PAIRBOT_EXECUTOR_WORKERS")
	setInt(&cfg.Executor.QueueSize, "PAIRBOT_EXECUTOR_QUEUE_SIZE")
	setFloat64(&cfg.Executor.RatePerSec, "PAIRBOT_EXECUTOR_RATE_PER_SEC")
	setInt(&cfg.Executor.Burst, "PAIRBOT_EXECUTOR_BURST")
	setDuration(&cfg.Executor.Cooldown, "PAIRBOT_EXECUTOR_COOLDOWN")
	setFloat64(&cfg.Executor.ExecutionSpread, "PAIRBOT_EXECUTOR_EXECUTION_SPREAD")
	setFloat64(&cfg.Executor.MinYesPrice, "PAIRBOT_EXECUTOR_MIN_YES_PRICE")
	setFloat64(&cfg.Executor.MinNoPrice, "PAIRBOT_EXECUTOR_MIN_NO_PRICE")
	setBool(&cfg.Executor.KillSwitch, "PAIRBOT_EXECUTOR_KILL_SWITCH")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PAIRBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PAIRBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PAIRBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PAIRBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PAIRBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PAIRBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PAIRBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.BookTTL, "PAIRBOT_REDIS_BOOK_TTL")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "PAIRBOT_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "PAIRBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PAIRBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PAIRBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PAIRBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PAIRBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PAIRBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PAIRBOT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PAIRBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PAIRBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PAIRBOT_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PAIRBOT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PAIRBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PAIRBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "PAIRBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PAIRBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PAIRBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PAIRBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PAIRBOT_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "PAIRBOT_S3_PREFIX")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PAIRBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PAIRBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PAIRBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PAIRBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "PAIRBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
