// Package notify turns execution outcomes into chat alerts. Each outcome is
// rendered once into a Notification and fanned out to the configured senders
// (Telegram, Discord), filtered by event type so operators receive only the
// alerts they care about.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Notification is one rendered alert. Event carries the filterable type name,
// Title a short headline and Body the preformatted detail lines; senders wrap
// Title in their own channel markup.
type Notification struct {
	Event string
	Title string
	Body  string
}

// Sender delivers a rendered notification over one channel.
type Sender interface {
	Deliver(ctx context.Context, n Notification) error
	// Name identifies the channel in logs (e.g. "telegram").
	Name() string
}

// postJSON posts a JSON payload and treats any non-2xx status as an error.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
