package sniper

import (
	"context"
	"fmt"
	"time"

	"github.com/scorearb/arbiter/internal/adapters/outbound/kalshi_http"
	"github.com/scorearb/arbiter/internal/audit"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

const orderTimeout = 500 * time.Millisecond

// Sniper consumes ExecuteTrade commands and turns each into exactly one
// signed REST order, publishing exactly one FillReport per command. It
// never retries — a timed-out or rejected command is reported and dropped,
// leaving retry/backoff policy to Brain's next decision cycle.
type Sniper struct {
	client  *kalshi_http.Client
	breaker *breaker
	audit   *audit.Store

	in  <-chan events.ExecuteTrade
	out *events.Channel[events.FillReport]
}

func New(client *kalshi_http.Client, store *audit.Store, in *events.Channel[events.ExecuteTrade], out *events.Channel[events.FillReport], breakerFailureThreshold int, breakerCooldown, breakerMaxCooldown time.Duration) *Sniper {
	return &Sniper{
		client:  client,
		breaker: newBreaker(breakerFailureThreshold, breakerCooldown, breakerMaxCooldown),
		audit:   store,
		in:      in.Subscribe(),
		out:     out,
	}
}

func (s *Sniper) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-s.in:
			if !ok {
				return
			}
			s.execute(ctx, trade)
		}
	}
}

func (s *Sniper) execute(ctx context.Context, trade events.ExecuteTrade) {
	start := time.Now()
	defer func() { telemetry.Metrics.OrderE2ELatency.Record(time.Since(start)) }()

	if !s.breaker.Allow() {
		s.out.Publish(events.FillReport{
			Kind:      events.FillRejected,
			Ticker:    trade.Ticker,
			GameID:    trade.GameID,
			Qty:       trade.Quantity,
			Reason:    "sniper_open",
			Timestamp: time.Now(),
		})
		return
	}

	octx, cancel := context.WithTimeout(ctx, orderTimeout)
	defer cancel()

	req := kalshi_http.CreateOrderRequest{
		Ticker:      trade.Ticker,
		Action:      "buy",
		Side:        string(trade.Side),
		Type:        "limit",
		CountFP:     fmt.Sprintf("%d.00", trade.Quantity),
		TimeInForce: "immediate_or_cancel",
	}
	if trade.Side == events.SideYes {
		req.YesPriceDollars = centsToDollars(trade.LimitPriceCents)
	} else {
		req.NoPriceDollars = centsToDollars(trade.LimitPriceCents)
	}

	resp, err := s.client.PlaceOrder(octx, req)
	if err != nil {
		if s.breaker.RecordFailure() {
			s.logTrip(trade.Ticker)
		}
		s.out.Publish(events.FillReport{
			Kind:      events.FillError,
			Ticker:    trade.Ticker,
			GameID:    trade.GameID,
			Qty:       trade.Quantity,
			Reason:    err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	s.breaker.RecordSuccess()
	s.out.Publish(fillFromOrder(trade, resp.Order))
}

func (s *Sniper) logTrip(ticker string) {
	until := s.breaker.CooldownUntil()
	telemetry.Metrics.CircuitTrips.Inc()
	telemetry.Warnf("sniper: circuit breaker tripped ticker=%s cooldown_until=%s", ticker, until.Format(time.RFC3339))

	if s.audit == nil {
		return
	}
	if err := s.audit.Insert(audit.Row{
		Ts:        time.Now(),
		EventType: "breaker_open",
		Reason:    ticker,
	}); err != nil {
		telemetry.Warnf("sniper: audit insert failed: %v", err)
	}
}

func fillFromOrder(trade events.ExecuteTrade, order kalshi_http.OrderDetail) events.FillReport {
	kind := events.FillPartial
	switch {
	case order.FillCount == 0:
		kind = events.FillRejected
	case order.RemainingCount == 0:
		kind = events.FillFilled
	}

	avgPrice := trade.LimitPriceCents
	if order.FillCount > 0 && order.TakerFillCost > 0 {
		avgPrice = order.TakerFillCost / order.FillCount
	}

	return events.FillReport{
		Kind:          kind,
		Ticker:        trade.Ticker,
		GameID:        trade.GameID,
		Qty:           order.FillCount,
		AvgPriceCents: avgPrice,
		Reason:        order.Status,
		Timestamp:     time.Now(),
	}
}

func centsToDollars(cents int) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
