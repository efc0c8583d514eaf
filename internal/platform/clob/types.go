package clob

import (
	"fmt"
	"strconv"
	"time"

	"github.com/quantfold/pairbot/internal/domain"
)

// wsCommand is the JSON payload sent to the WebSocket to subscribe.
type wsCommand struct {
	Type    string   `json:"type"` // "subscribe" or "unsubscribe"
	Channel string   `json:"channel,omitempty"`
	Assets  []string `json:"assets_ids,omitempty"`
}

// wsEnvelope identifies the message type of an incoming frame.
type wsEnvelope struct {
	EventType string `json:"event_type"`
	MsgType   string `json:"msg_type"`
}

// bookMessage is a full orderbook snapshot delivered over the "book" channel.
type bookMessage struct {
	AssetID   string         `json:"asset_id"`
	Market    string         `json:"market"`
	Bids      []wsPriceLevel `json:"bids"`
	Asks      []wsPriceLevel `json:"asks"`
	Timestamp string         `json:"timestamp"`
	Hash      string         `json:"hash"`
}

// wsPriceLevel is a single bid/ask level in the wire format.
type wsPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// toSnapshot converts a wire book message to a domain snapshot. A level that
// fails to parse makes the whole message malformed: the session owner treats
// that as a feed fault rather than trading on a half-read book.
func (b *bookMessage) toSnapshot() (domain.BookSnapshot, error) {
	snap := domain.BookSnapshot{InstrumentID: b.AssetID}
	if b.AssetID == "" {
		return snap, fmt.Errorf("clob: book message without asset_id")
	}

	for _, lvl := range b.Bids {
		p, s, err := lvl.parse()
		if err != nil {
			return snap, fmt.Errorf("clob: bid level: %w", err)
		}
		snap.Bids = append(snap.Bids, domain.PriceLevel{Price: p, Size: s})
		if p > snap.BestBid {
			snap.BestBid = p
		}
	}
	for _, lvl := range b.Asks {
		p, s, err := lvl.parse()
		if err != nil {
			return snap, fmt.Errorf("clob: ask level: %w", err)
		}
		snap.Asks = append(snap.Asks, domain.PriceLevel{Price: p, Size: s})
		if snap.BestAsk == 0 || p < snap.BestAsk {
			snap.BestAsk = p
		}
	}

	if ms, err := strconv.ParseInt(b.Timestamp, 10, 64); err == nil {
		snap.Timestamp = time.UnixMilli(ms)
	} else if t, err := time.Parse(time.RFC3339, b.Timestamp); err == nil {
		snap.Timestamp = t
	} else {
		snap.Timestamp = time.Now()
	}

	return snap, nil
}

func (l wsPriceLevel) parse() (price, size float64, err error) {
	price, err = strconv.ParseFloat(l.Price, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad price %q", l.Price)
	}
	size, err = strconv.ParseFloat(l.Size, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad size %q", l.Size)
	}
	return price, size, nil
}
