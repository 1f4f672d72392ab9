package risk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scorearb/arbiter/internal/audit"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// finalsBuffer bounds the hand-off queue between the status bus's
// synchronous dispatch (Oracle's goroutine, via onGameFinalEvent) and
// Shield's own Run loop. Game-final transitions are rare relative to
// fills, so a small buffer is enough; a full buffer only means settlement
// lags a tick behind, never that it's lost silently without a log line.
const finalsBuffer = 64

// Shield is the agent that owns State's write side: it consumes every
// FillReport Sniper publishes and every game-final notification Oracle
// publishes on the status bus, and is the only component (besides Brain's
// optimistic trade-count bump) allowed to mutate State.
//
// Game-final notifications ride the synchronous status Bus rather than
// Brain's gameEvents Channel[T]: that Channel is single-producer/single-
// consumer (channel.go's own doc comment), and Brain is already its one
// consumer. A second reader would silently steal roughly half of every
// GameEvent from whichever of Brain or Shield the scheduler favored.
type Shield struct {
	state  *State
	fills  <-chan events.FillReport
	finals chan string
	status *events.Bus
	audit  *audit.Store

	lastHalted bool
}

func NewShield(state *State, fills *events.Channel[events.FillReport], status *events.Bus, store *audit.Store) *Shield {
	s := &Shield{
		state:  state,
		fills:  fills.Subscribe(),
		finals: make(chan string, finalsBuffer),
		status: status,
		audit:  store,
	}
	if status != nil {
		status.Subscribe(events.EventGameFinal, s.onGameFinalEvent)
	}
	return s
}

// onGameFinalEvent is invoked synchronously on Oracle's publishing
// goroutine; it only ever hands the game id off to Run's own loop, so every
// State mutation and lastHalted read still happens on a single goroutine.
func (s *Shield) onGameFinalEvent(e events.Event) error {
	select {
	case s.finals <- e.GameID:
	default:
		telemetry.Warnf("shield: finals queue full, dropping game_final for game=%s", e.GameID)
	}
	return nil
}

// Run drains fills and game-final notifications until ctx is cancelled.
// Exits only on shutdown.
func (s *Shield) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-s.fills:
			if !ok {
				s.fills = nil
				continue
			}
			s.onFill(report)
		case gameID, ok := <-s.finals:
			if !ok {
				s.finals = nil
				continue
			}
			s.state.SettleGame(gameID)
			s.checkHalt()
		}
	}
}

func (s *Shield) onFill(report events.FillReport) {
	switch report.Kind {
	case events.FillFilled, events.FillPartial:
		s.state.ApplyFill(report.GameID, report.Ticker, report.Qty, report.AvgPriceCents)
	case events.FillRejected, events.FillError:
		// Brain's optimistic increment overcounted; correct it.
		s.state.IncrementTradeCount(report.GameID, -1)
		telemetry.Warnf("shield: trade rejected game=%s ticker=%s reason=%s", report.GameID, report.Ticker, report.Reason)
	}

	s.checkHalt()
}

// checkHalt publishes a HaltEvent and an audit row only on the rising edge
// of the risk-wide halt flag, so a burst of post-halt fills doesn't spam
// the status bus or the audit log.
func (s *Shield) checkHalt() {
	snap := s.state.Read()
	if snap.IsHalted == s.lastHalted {
		return
	}
	s.lastHalted = snap.IsHalted
	if !snap.IsHalted {
		return
	}

	telemetry.Metrics.HaltEvents.Inc()
	telemetry.Warnf("shield: risk halt tripped reason=%s realized_pnl=%d open_exposure=%d", snap.HaltReason, snap.RealizedPnLCents, snap.OpenExposureCents)

	if s.status != nil {
		s.status.Publish(events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventHalt,
			Timestamp: time.Now(),
			Payload:   events.HaltEvent{Reason: snap.HaltReason},
		})
	}
	if s.audit != nil {
		if err := s.audit.Insert(audit.Row{
			Ts:                time.Now(),
			EventType:         "halt",
			Reason:            snap.HaltReason,
			RealizedPnLCents:  snap.RealizedPnLCents,
			OpenExposureCents: snap.OpenExposureCents,
		}); err != nil {
			telemetry.Warnf("shield: audit insert failed: %v", err)
		}
	}
}
