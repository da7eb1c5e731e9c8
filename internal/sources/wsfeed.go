package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sugawarayuuta/sonnet"

	"github.com/arbitcore/arbitcore/internal/domain"
)

// tickerMessage is the subset of a venue's BBO ticker payload this feed
// cares about. Real venues vary field names; callers needing a
// different shape supply their own Decode func via WSFeedConfig.
type tickerMessage struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bidPrice,string"`
	Ask    float64 `json:"askPrice,string"`
	BidQty float64 `json:"bidQty,string"`
	AskQty float64 `json:"askQty,string"`
}

// WSFeedConfig parameterizes WSFeed for a specific venue: its endpoint,
// subscribe frame, and how to decode one ticker frame into a Quote.
type WSFeedConfig struct {
	Venue            string
	URL              string
	SubscribeMessage []byte // sent once, right after the handshake; nil to skip
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	Decode           func(frame []byte) (domain.Quote, error) // nil uses DecodeTickerFrame
}

// WSFeed is a thin WebSocket quote source: dial, optional subscribe
// frame, then a read loop that decodes each text frame into a Quote and
// hands it to ingest. Follows a dial/connection-wrapper/frame-read-loop
// split, built on gorilla/websocket's client API rather than a
// hand-rolled frame parser, and sugawarayuuta/sonnet for JSON decoding
// instead of encoding/json.
type WSFeed struct {
	cfg WSFeedConfig
}

// NewWSFeed constructs a feed from cfg, filling in documented defaults
// for zero-valued timeouts.
func NewWSFeed(cfg WSFeedConfig) *WSFeed {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.Decode == nil {
		cfg.Decode = DecodeTickerFrame(cfg.Venue)
	}
	return &WSFeed{cfg: cfg}
}

// DecodeTickerFrame returns a decoder that maps a venue's ticker JSON
// frame into a domain.Quote tagged with venue.
func DecodeTickerFrame(venue string) func([]byte) (domain.Quote, error) {
	return func(frame []byte) (domain.Quote, error) {
		var msg tickerMessage
		if err := sonnet.Unmarshal(frame, &msg); err != nil {
			return domain.Quote{}, fmt.Errorf("sources: decode ticker frame: %w", err)
		}
		return domain.Quote{
			Venue:     venue,
			RawSymbol: msg.Symbol,
			BidPrice:  msg.Bid,
			AskPrice:  msg.Ask,
			BidSize:   msg.BidQty,
			AskSize:   msg.AskQty,
			WallMS:    time.Now().UnixMilli(),
		}, nil
	}
}

// Run dials cfg.URL, sends the subscribe frame if configured, then
// reads frames until ctx is cancelled or the connection errors. It does
// not reconnect on its own — callers wanting reconnect-with-backoff
// wrap Run in their own retry loop rather than Run retrying internally.
func (f *WSFeed) Run(ctx context.Context, ingest func(domain.Quote)) error {
	dialer := websocket.Dialer{HandshakeTimeout: f.cfg.HandshakeTimeout}
	header := make(http.Header)

	conn, _, err := dialer.DialContext(ctx, f.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("sources: dial %s: %w", f.cfg.URL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if f.cfg.PingInterval > 0 {
		go f.pingLoop(ctx, conn)
	}

	if len(f.cfg.SubscribeMessage) > 0 {
		if err := conn.WriteMessage(websocket.TextMessage, f.cfg.SubscribeMessage); err != nil {
			return fmt.Errorf("sources: subscribe: %w", err)
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("sources: read frame: %w", err)
		}

		q, err := f.cfg.Decode(frame)
		if err != nil {
			continue // malformed frame; skip rather than kill the feed
		}
		ingest(q)
	}
}

// pingLoop writes a WebSocket ping frame on cfg.PingInterval until ctx
// is cancelled, so a venue that closes idle connections sees steady
// traffic. A write failure closes conn and lets Run's read loop
// surface the resulting error.
func (f *WSFeed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(f.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
