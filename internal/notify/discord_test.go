package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscordSenderDeliver(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	err := s.Deliver(context.Background(), Notification{
		Event: EventArbExecuted,
		Title: "Arbitrage executed",
		Body:  "market m1",
	})
	require.NoError(t, err)
	require.Equal(t, "**Arbitrage executed**\nmarket m1", payload["content"])
}

func TestDiscordSenderDeliverStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	err := s.Deliver(context.Background(), Notification{Title: "t", Body: "b"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "discord")
	require.Contains(t, err.Error(), "429")
}
