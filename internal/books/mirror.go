package books

import (
	"context"
	"log/slog"
	"time"

	"github.com/quantfold/pairbot/internal/domain"
)

// mirrorWriteTimeout bounds a single remote write so a slow mirror can never
// back up the pump goroutine indefinitely.
const mirrorWriteTimeout = 2 * time.Second

// MirrorPump copies snapshots to a remote BookMirror off the hot path. The
// detection loop calls Offer, which never blocks; a dedicated goroutine
// performs the remote writes. Snapshots are dropped when the pump is behind —
// the mirror is a diagnostic view, not the source of truth.
type MirrorPump struct {
	mirror domain.BookMirror
	ch     chan domain.BookSnapshot
	logger *slog.Logger
}

// NewMirrorPump creates a pump with the given buffer size.
func NewMirrorPump(mirror domain.BookMirror, buffer int, logger *slog.Logger) *MirrorPump {
	if buffer <= 0 {
		buffer = 256
	}
	return &MirrorPump{
		mirror: mirror,
		ch:     make(chan domain.BookSnapshot, buffer),
		logger: logger.With(slog.String("component", "book_mirror_pump")),
	}
}

// Offer enqueues a snapshot for mirroring. It returns immediately; the
// snapshot is dropped if the buffer is full.
func (p *MirrorPump) Offer(snap domain.BookSnapshot) {
	select {
	case p.ch <- snap:
	default:
	}
}

// Run writes queued snapshots to the remote mirror until ctx is cancelled.
func (p *MirrorPump) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-p.ch:
			wctx, cancel := context.WithTimeout(ctx, mirrorWriteTimeout)
			err := p.mirror.SetSnapshot(wctx, snap)
			cancel()
			if err != nil {
				p.logger.Warn("mirror write failed",
					slog.String("instrument", snap.InstrumentID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
