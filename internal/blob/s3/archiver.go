package s3blob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantfold/pairbot/internal/domain"
)

// SessionArchive is the JSON document written to blob storage when a
// subscription session ends. It captures the final book state so a session
// can be inspected after the fact without touching the live process.
type SessionArchive struct {
	SessionID  string                `json:"session_id"`
	StartedAt  time.Time             `json:"started_at"`
	EndedAt    time.Time             `json:"ended_at"`
	EndReason  string                `json:"end_reason"`
	Markets    []domain.MarketPair   `json:"markets"`
	Books      []domain.BookSnapshot `json:"books"`
	TradesUsed int                   `json:"trades_used"`
}

// Archiver uploads end-of-session archives to blob storage.
type Archiver struct {
	writer domain.BlobWriter
	prefix string
	logger *slog.Logger
}

// NewArchiver creates an Archiver that writes archives under the given key
// prefix (e.g. "sessions").
func NewArchiver(writer domain.BlobWriter, prefix string, logger *slog.Logger) *Archiver {
	if prefix == "" {
		prefix = "sessions"
	}
	return &Archiver{
		writer: writer,
		prefix: prefix,
		logger: logger.With("component", "archiver"),
	}
}

// Archive serializes the session document and uploads it. The object key is
// derived from the session end date and id, so archives sort naturally by
// day in bucket listings.
func (a *Archiver) Archive(ctx context.Context, arc SessionArchive) error {
	data, err := json.Marshal(arc)
	if err != nil {
		return fmt.Errorf("archiver: marshal session %s: %w", arc.SessionID, err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", a.prefix, arc.EndedAt.UTC().Format("2006-01-02"), arc.SessionID)
	if err := a.writer.Put(ctx, key, data, "application/json"); err != nil {
		return fmt.Errorf("archiver: upload session %s: %w", arc.SessionID, err)
	}

	a.logger.Info("session archived",
		"session_id", arc.SessionID,
		"key", key,
		"markets", len(arc.Markets),
		"books", len(arc.Books),
	)
	return nil
}
