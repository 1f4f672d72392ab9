package brain

import (
	"context"

	"github.com/scorearb/arbiter/internal/config"
	"github.com/scorearb/arbiter/internal/core/orderbook"
	"github.com/scorearb/arbiter/internal/core/risk"
	"github.com/scorearb/arbiter/internal/core/ticker"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// Brain matches GameEvents against the orderbook and emits ExecuteTrade
// commands for every alt-total line the observed score has already
// guaranteed YES on. It never blocks on network I/O except the one-time
// per-game threshold-map fetch, which singleflight coalesces.
type Brain struct {
	series  config.SeriesDocument
	books   *orderbook.Cache
	builder *ticker.ThresholdMapBuilder
	watcher *orderbook.Watcher
	state   *risk.State

	minEdgeCents          int
	netPayoutCents        int
	maxPriceSlippageCents int
	defaultQuantity       int
	maxQuantity           int
	maxOpenExposureCents  int

	in  <-chan events.GameEvent
	out *events.Channel[events.ExecuteTrade]
}

func New(
	cfg *config.Config,
	series config.SeriesDocument,
	books *orderbook.Cache,
	builder *ticker.ThresholdMapBuilder,
	watcher *orderbook.Watcher,
	state *risk.State,
	in *events.Channel[events.GameEvent],
	out *events.Channel[events.ExecuteTrade],
) *Brain {
	return &Brain{
		series:                series,
		books:                 books,
		builder:               builder,
		watcher:               watcher,
		state:                 state,
		minEdgeCents:          cfg.MinEdgeCents,
		netPayoutCents:        cfg.NetPayoutCents,
		maxPriceSlippageCents: cfg.MaxPriceSlippageCents,
		defaultQuantity:       cfg.DefaultQuantity,
		maxQuantity:           cfg.MaxQuantity,
		maxOpenExposureCents:  cfg.MaxOpenExposureCents,
		in:                    in.Subscribe(),
		out:                   out,
	}
}

func (b *Brain) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case game, ok := <-b.in:
			if !ok {
				return
			}
			b.onGameEvent(ctx, game)
		}
	}
}

func (b *Brain) onGameEvent(ctx context.Context, game events.GameEvent) {
	snap := b.state.Read()
	if snap.IsHalted {
		telemetry.Metrics.EdgeSkips.Inc()
		return
	}
	if snap.GameHalted(game.GameID) {
		telemetry.Metrics.EdgeSkips.Inc()
		return
	}

	seriesCfg, ok := b.series[game.Sport]
	if !ok {
		return
	}

	tm, err := b.builder.Build(ctx, game.GameID, seriesCfg.SeriesPrefix, game.AwayTeam, game.HomeTeam)
	if err != nil {
		telemetry.Warnf("brain: threshold map build game=%s: %v", game.GameID, err)
		return
	}
	b.subscribeAll(tm)

	for _, entry := range tm.QualifyingEntries(game.Total) {
		b.evaluate(game, entry)
	}
}

// subscribeAll registers every ticker in a newly-built threshold map with
// the Watcher. SubscribeTickers is idempotent, so calling this on every
// GameEvent for an already-subscribed game is a cheap no-op.
func (b *Brain) subscribeAll(tm ticker.ThresholdMap) {
	if b.watcher == nil || len(tm.Entries) == 0 {
		return
	}
	tickers := make([]string, len(tm.Entries))
	for i, e := range tm.Entries {
		tickers[i] = e.Ticker
	}
	if err := b.watcher.Subscribe(tickers); err != nil {
		telemetry.Warnf("brain: subscribe game=%s: %v", tm.GameID, err)
	}
}

func (b *Brain) evaluate(game events.GameEvent, entry ticker.ThresholdEntry) {
	book := b.books.Get(entry.Ticker)
	if !book.HasYesAsk() {
		return
	}

	edge := b.netPayoutCents - book.BestYesAsk
	if edge < b.minEdgeCents {
		telemetry.Metrics.EdgeSkips.Inc()
		return
	}

	quantity := b.defaultQuantity
	if quantity > b.maxQuantity {
		quantity = b.maxQuantity
	}

	snap := b.state.Read()
	// Re-check the per-game cap here, not just once in onGameEvent: a single
	// GameEvent can yield several qualifying entries, and an earlier entry
	// in this same pass may have just pushed trades_this_game to the limit.
	if snap.GameHalted(game.GameID) {
		telemetry.Metrics.EdgeSkips.Inc()
		return
	}
	cost := quantity * book.BestYesAsk
	if snap.OpenExposureCents+cost > b.maxOpenExposureCents {
		telemetry.Metrics.EdgeSkips.Inc()
		return
	}

	limitCeiling := b.netPayoutCents - b.minEdgeCents + b.maxPriceSlippageCents
	limit := book.BestYesAsk + b.maxPriceSlippageCents
	if limit > limitCeiling {
		limit = limitCeiling
	}

	trade := events.ExecuteTrade{
		Ticker:          entry.Ticker,
		Side:            events.SideYes,
		LimitPriceCents: limit,
		Quantity:        quantity,
		SignalAt:        game.ObservedAt,
		GameID:          game.GameID,
		ScoreAtDecision: game.Total,
	}

	b.state.IncrementTradeCount(game.GameID, 1)
	b.out.Publish(trade)
	telemetry.Metrics.TradesExecuted.Inc()
}
