package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/quantfold/pairbot/internal/blob/s3"
	"github.com/quantfold/pairbot/internal/cache/redis"
	"github.com/quantfold/pairbot/internal/config"
	"github.com/quantfold/pairbot/internal/domain"
	"github.com/quantfold/pairbot/internal/store/postgres"
)

// Dependencies bundles the optional infrastructure the bot can run with.
// Every field may be nil; the core detection loop works without any of them.
type Dependencies struct {
	// Mirror is the remote book copy for external readers.
	Mirror domain.BookMirror

	// Bus publishes opportunities and execution results.
	Bus domain.SignalBus

	// Opportunities journals detected opportunities.
	Opportunities domain.OpportunityStore

	// Blob receives end-of-session archives.
	Blob domain.BlobWriter
}

// Wire constructs the enabled infrastructure implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis: book mirror + signal bus ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Mirror = redis.NewBookMirror(redisClient, cfg.Redis.BookTTL.Duration)
		deps.Bus = redis.NewSignalBus(redisClient)
		logger.Info("redis wired", slog.String("addr", cfg.Redis.Addr))
	}

	// --- PostgreSQL: opportunity journal ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Opportunities = postgres.NewOpportunityStore(pgClient.Pool())
		logger.Info("postgres wired", slog.String("database", cfg.Postgres.Database))
	}

	// --- S3: session archives ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Blob = s3blob.NewWriter(s3Client)
		logger.Info("s3 wired", slog.String("bucket", cfg.S3.Bucket))
	}

	return deps, cleanup, nil
}
