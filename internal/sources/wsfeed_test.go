package sources

import "testing"

func TestDecodeTickerFrameMapsFields(t *testing.T) {
	decode := DecodeTickerFrame("binance")

	frame := []byte(`{"symbol":"BTCUSDT","bidPrice":"100.10","askPrice":"100.20","bidQty":"1.5","askQty":"2.5"}`)
	q, err := decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Venue != "binance" || q.RawSymbol != "BTCUSDT" {
		t.Fatalf("unexpected venue/symbol: %+v", q)
	}
	if q.BidPrice != 100.10 || q.AskPrice != 100.20 {
		t.Fatalf("unexpected bid/ask: %+v", q)
	}
	if q.BidSize != 1.5 || q.AskSize != 2.5 {
		t.Fatalf("unexpected bid/ask size: %+v", q)
	}
	if q.WallMS <= 0 {
		t.Fatalf("expected a populated wall clock timestamp, got %d", q.WallMS)
	}
}

func TestDecodeTickerFrameRejectsMalformedJSON(t *testing.T) {
	decode := DecodeTickerFrame("binance")
	if _, err := decode([]byte(`not json`)); err == nil {
		t.Fatal("expected an error decoding malformed JSON")
	}
}

func TestNewWSFeedFillsDefaults(t *testing.T) {
	f := NewWSFeed(WSFeedConfig{Venue: "binance", URL: "wss://example.invalid/ws"})
	if f.cfg.HandshakeTimeout <= 0 {
		t.Fatal("expected a default handshake timeout to be filled in")
	}
	if f.cfg.Decode == nil {
		t.Fatal("expected a default decoder to be filled in")
	}
	if f.cfg.PingInterval <= 0 {
		t.Fatal("expected a default ping interval to be filled in")
	}
}
