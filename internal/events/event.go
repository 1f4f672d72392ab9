package events

import "time"

// Event is the envelope that flows through the synchronous bus (status and
// metrics fan-out only — the hot-path GameEvent/ExecuteTrade/FillReport
// traffic rides typed Channel[T] instances instead, see channel.go).
type Event struct {
	ID        string
	Type      EventType
	Sport     string
	League    string
	GameID    string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// EventWSStatus is published on every Watcher connect/disconnect.
	EventWSStatus EventType = "ws_status"
	// EventSeqGap identifies a sequence-gap notification for a ticker. Watcher
	// does not publish it: a gap is logged and counted in
	// telemetry.Metrics.SeqGaps instead.
	EventSeqGap EventType = "seq_gap"
	// EventHalt is published when Shield trips a halt.
	EventHalt EventType = "halt"
	// EventGameFinal is published by Oracle alongside every final GameEvent
	// it emits (each poll that still reports the game final), so Shield can settle cost-basis without sharing Brain's single-
	// consumer GameEvent channel (Channel[T] is single-producer/single-
	// consumer per channel.go's own doc comment).
	EventGameFinal EventType = "game_final"
)

// WSStatusEvent signals the Watcher's stream connection state.
type WSStatusEvent struct {
	Connected bool
}

// SeqGapEvent signals a detected orderbook sequence gap for a ticker.
type SeqGapEvent struct {
	Ticker   string
	Expected int64
	Got      int64
}

// HaltEvent signals a RiskState halt transition.
type HaltEvent struct {
	Reason string
	GameID string // empty for a global halt
}

// GameFinalEvent signals that Oracle observed a game's status go final,
// the trigger Shield uses to settle that game's open cost-basis.
type GameFinalEvent struct {
	GameID string
}
