package books

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/domain"
)

// memoryMirror records snapshots written through the pump.
type memoryMirror struct {
	mu    sync.Mutex
	snaps map[string]domain.BookSnapshot
	wrote chan struct{}
}

func newMemoryMirror() *memoryMirror {
	return &memoryMirror{
		snaps: make(map[string]domain.BookSnapshot),
		wrote: make(chan struct{}, 16),
	}
}

func (m *memoryMirror) SetSnapshot(ctx context.Context, snap domain.BookSnapshot) error {
	m.mu.Lock()
	m.snaps[snap.InstrumentID] = snap
	m.mu.Unlock()
	m.wrote <- struct{}{}
	return nil
}

func (m *memoryMirror) GetSnapshot(ctx context.Context, instrumentID string) (domain.BookSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[instrumentID]
	if !ok {
		return domain.BookSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func TestMirrorPumpWritesOfferedSnapshots(t *testing.T) {
	mirror := newMemoryMirror()
	pump := NewMirrorPump(mirror, 8, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pump.Run(ctx) }()

	pump.Offer(domain.BookSnapshot{InstrumentID: "tok1", BestBid: 0.4, BestAsk: 0.6})

	select {
	case <-mirror.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot never mirrored")
	}

	snap, err := mirror.GetSnapshot(ctx, "tok1")
	require.NoError(t, err)
	require.Equal(t, 0.4, snap.BestBid)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestMirrorPumpOfferNeverBlocks(t *testing.T) {
	// No Run goroutine: the buffer fills and further offers are dropped.
	pump := NewMirrorPump(newMemoryMirror(), 2, slog.New(slog.DiscardHandler))

	doneCh := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pump.Offer(domain.BookSnapshot{InstrumentID: "tok1"})
		}
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Offer blocked")
	}
}
