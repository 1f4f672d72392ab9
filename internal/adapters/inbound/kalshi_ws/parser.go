package kalshi_ws

import (
	"encoding/json"

	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// wsMessage represents a raw message from the exchange WebSocket.
type wsMessage struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
	Seq  int64           `json:"seq"`
}

// orderbookMsg covers both orderbook_snapshot and orderbook_delta frames.
// Snapshot carries full yes/no level arrays; delta carries a single
// price/delta pair to apply to the existing book.
type orderbookMsg struct {
	MarketTicker string      `json:"market_ticker"`
	Yes          [][2]int    `json:"yes,omitempty"`  // [price_cents, size] pairs, snapshot only
	No           [][2]int    `json:"no,omitempty"`
	Side         string      `json:"side,omitempty"`  // delta only: "yes" or "no"
	Price        int         `json:"price,omitempty"` // delta only
	Delta        int         `json:"delta,omitempty"` // delta only: size change, may be negative
}

// ParseMessage converts a raw WebSocket frame into zero or more
// MarketUpdate events. Unrecognized or malformed frames are logged and
// skipped — never crash the read loop (spec.md §7).
func ParseMessage(data []byte) []events.MarketUpdate {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		telemetry.Warnf("kalshi_ws: parse error: %v", err)
		return nil
	}

	switch msg.Type {
	case "orderbook_snapshot":
		return parseSnapshot(msg.Msg, msg.Seq)
	case "orderbook_delta":
		return parseDelta(msg.Msg, msg.Seq)
	case "subscribed", "unsubscribed", "ok", "error":
		if msg.Type == "error" {
			telemetry.Warnf("kalshi_ws: server error: %s", string(msg.Msg))
		}
		return nil
	default:
		return nil
	}
}

func parseSnapshot(raw json.RawMessage, seq int64) []events.MarketUpdate {
	var ob orderbookMsg
	if err := json.Unmarshal(raw, &ob); err != nil {
		telemetry.Warnf("kalshi_ws: snapshot parse error: %v", err)
		return nil
	}
	if ob.MarketTicker == "" {
		return nil
	}

	var out []events.MarketUpdate
	if len(ob.Yes) > 0 {
		out = append(out, events.MarketUpdate{
			Ticker:   ob.MarketTicker,
			Seq:      seq,
			Side:     events.SideYes,
			Snapshot: true,
			Levels:   toLevels(ob.Yes),
		})
	}
	if len(ob.No) > 0 {
		out = append(out, events.MarketUpdate{
			Ticker:   ob.MarketTicker,
			Seq:      seq,
			Side:     events.SideNo,
			Snapshot: true,
			Levels:   toLevels(ob.No),
		})
	}
	return out
}

func parseDelta(raw json.RawMessage, seq int64) []events.MarketUpdate {
	var ob orderbookMsg
	if err := json.Unmarshal(raw, &ob); err != nil {
		telemetry.Warnf("kalshi_ws: delta parse error: %v", err)
		return nil
	}
	if ob.MarketTicker == "" || (ob.Side != "yes" && ob.Side != "no") {
		return nil
	}

	side := events.SideYes
	if ob.Side == "no" {
		side = events.SideNo
	}

	return []events.MarketUpdate{{
		Ticker:   ob.MarketTicker,
		Seq:      seq,
		Side:     side,
		Snapshot: false,
		Levels:   []events.PriceLevel{{PriceCents: ob.Price, Size: ob.Delta}},
	}}
}

func toLevels(pairs [][2]int) []events.PriceLevel {
	levels := make([]events.PriceLevel, len(pairs))
	for i, p := range pairs {
		levels[i] = events.PriceLevel{PriceCents: p[0], Size: p[1]}
	}
	return levels
}
