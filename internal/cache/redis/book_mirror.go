package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantfold/pairbot/internal/domain"
)

// BookMirror implements domain.BookMirror: one JSON value per instrument
// under "book:{instrumentID}", with a TTL so stale sessions age out on their
// own. External diagnostics readers consume these without touching the
// in-process cache.
type BookMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBookMirror creates a BookMirror. A zero ttl keeps entries until
// overwritten.
func NewBookMirror(c *Client, ttl time.Duration) *BookMirror {
	return &BookMirror{rdb: c.Underlying(), ttl: ttl}
}

func bookKey(instrumentID string) string { return "book:" + instrumentID }

// SetSnapshot overwrites the mirrored snapshot for the instrument.
func (m *BookMirror) SetSnapshot(ctx context.Context, snap domain.BookSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", snap.InstrumentID, err)
	}
	if err := m.rdb.Set(ctx, bookKey(snap.InstrumentID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", snap.InstrumentID, err)
	}
	return nil
}

// GetSnapshot reads the mirrored snapshot for the instrument. It returns
// domain.ErrNotFound when the instrument has never been mirrored or the
// entry has expired.
func (m *BookMirror) GetSnapshot(ctx context.Context, instrumentID string) (domain.BookSnapshot, error) {
	data, err := m.rdb.Get(ctx, bookKey(instrumentID)).Bytes()
	if err == redis.Nil {
		return domain.BookSnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("redis: get snapshot %s: %w", instrumentID, err)
	}

	var snap domain.BookSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("redis: unmarshal snapshot %s: %w", instrumentID, err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.BookMirror = (*BookMirror)(nil)
