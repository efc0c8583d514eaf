// Package clob speaks the CLOB market-data WebSocket protocol: subscribe to
// the "book" channel for a set of instruments and decode snapshots. One
// client is one subscription session; it does not reconnect. The session
// owner rebuilds subscriptions after a fault.
package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantfold/pairbot/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 15 * time.Second
)

// Client is a single-session WebSocket client for the CLOB market feed.
type Client struct {
	wsURL      string
	pingPeriod time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

// Option customises a Client.
type Option func(*Client)

// WithPingInterval overrides the keep-alive ping cadence.
func WithPingInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pingPeriod = d
		}
	}
}

// NewClient creates a client for the given WebSocket endpoint, e.g.
// "wss://ws-subscriptions-clob.polymarket.com/ws/market".
func NewClient(wsURL string, opts ...Option) *Client {
	c := &Client{
		wsURL:      wsURL,
		pingPeriod: pingPeriod,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes the WebSocket connection and starts the keep-alive
// ping loop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("clob: connect: %w", domain.ErrWSDisconnect)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("clob: connect: %w", err)
	}
	c.conn = conn

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.pingLoop(conn)
	return nil
}

// Subscribe requests book updates for the given instruments.
func (c *Client) Subscribe(assetIDs []string) error {
	if len(assetIDs) == 0 {
		return fmt.Errorf("clob: subscribe: %w", domain.ErrNoInstruments)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("clob: subscribe: not connected")
	}

	cmd := wsCommand{Type: "subscribe", Channel: "book", Assets: assetIDs}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("clob: subscribe: marshal: %w", err)
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("clob: subscribe: %w", err)
	}
	return nil
}

// Stream reads frames until a fault and delivers decoded snapshots. The
// returned channel carries at most one terminal error event and is then
// closed: transport errors, stream end, and malformed book messages all end
// the session here, with no per-message retry.
func (c *Client) Stream(ctx context.Context) <-chan domain.BookEvent {
	out := make(chan domain.BookEvent, 256)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			default:
			}

			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				return
			}

			_, raw, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done: // deliberate close, not a fault
				default:
					c.emit(ctx, out, domain.BookEvent{Err: fmt.Errorf("clob: read: %w: %v", domain.ErrWSDisconnect, err)})
				}
				return
			}

			events, err := decodeFrame(raw)
			if err != nil {
				c.emit(ctx, out, domain.BookEvent{Err: err})
				return
			}
			for _, ev := range events {
				if !c.emit(ctx, out, ev) {
					return
				}
			}
		}
	}()

	return out
}

func (c *Client) emit(ctx context.Context, out chan<- domain.BookEvent, ev domain.BookEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

// decodeFrame parses one WebSocket frame. Frames arrive either as a single
// JSON object or as an array of them; messages other than "book" (acks,
// price changes) are skipped, while an undecodable frame is a feed fault.
func decodeFrame(raw []byte) ([]domain.BookEvent, error) {
	var batch []json.RawMessage
	if err := json.Unmarshal(raw, &batch); err != nil {
		batch = []json.RawMessage{raw}
	}

	var events []domain.BookEvent
	for _, msg := range batch {
		var env wsEnvelope
		if err := json.Unmarshal(msg, &env); err != nil {
			return nil, fmt.Errorf("clob: malformed frame: %w", err)
		}
		evType := env.EventType
		if evType == "" {
			evType = env.MsgType
		}
		if evType != "book" {
			continue
		}

		var book bookMessage
		if err := json.Unmarshal(msg, &book); err != nil {
			return nil, fmt.Errorf("clob: malformed book message: %w", err)
		}
		snap, err := book.toSnapshot()
		if err != nil {
			return nil, err
		}
		events = append(events, domain.BookEvent{Snapshot: snap})
	}
	return events, nil
}

// pingLoop keeps the connection alive for its lifetime.
func (c *Client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	if c.conn != nil {
		_ = c.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return c.conn.Close()
	}
	return nil
}
