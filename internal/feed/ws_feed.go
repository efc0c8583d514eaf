// Package feed adapts the CLOB WebSocket client to the session's event
// sequence.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantfold/pairbot/internal/domain"
	"github.com/quantfold/pairbot/internal/platform/clob"
)

// WSFeed opens one market-data subscription per session. It does not
// reconnect: a feed fault ends the session and the owner opens a new feed.
type WSFeed struct {
	wsURL        string
	pingInterval time.Duration
	logger       *slog.Logger
}

// NewWSFeed creates a feed factory for the given endpoint. A zero
// pingInterval keeps the client default.
func NewWSFeed(wsURL string, pingInterval time.Duration, logger *slog.Logger) *WSFeed {
	return &WSFeed{
		wsURL:        wsURL,
		pingInterval: pingInterval,
		logger:       logger.With(slog.String("component", "ws_feed")),
	}
}

// Open connects, subscribes to the given instruments, and returns the event
// stream plus a close function. An empty instrument set is a registration
// fault: the caller must not build a stream with zero instruments.
func (f *WSFeed) Open(ctx context.Context, assetIDs []string) (<-chan domain.BookEvent, func(), error) {
	if len(assetIDs) == 0 {
		return nil, nil, fmt.Errorf("feed: open: %w", domain.ErrNoInstruments)
	}

	client := clob.NewClient(f.wsURL, clob.WithPingInterval(f.pingInterval))
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("feed: open: %w", err)
	}
	if err := client.Subscribe(assetIDs); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("feed: open: %w", err)
	}

	f.logger.Info("subscribed", slog.Int("instruments", len(assetIDs)))
	events := client.Stream(ctx)
	return events, func() { _ = client.Close() }, nil
}
