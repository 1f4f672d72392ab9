package orderbook

import (
	"context"
	"sync"
	"time"

	"github.com/scorearb/arbiter/internal/adapters/inbound/kalshi_ws"
	"github.com/scorearb/arbiter/internal/adapters/kalshi_auth"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// Watcher owns the exchange WebSocket connection (via kalshi_ws.Client) and
// applies incoming MarketUpdate frames into Cache, enforcing the
// per-ticker sequence discipline spec.md §4.3 requires: each ticker
// carries an expected next sequence; an out-of-order delta marks the
// ticker stale and forces a re-snapshot, dropping deltas until the
// snapshot is applied. Grounded on the retrieved connection-manager.go
// reference file's per-SID checkSequence pattern, generalized from SIDs to
// exchange tickers.
type Watcher struct {
	client *kalshi_ws.Client
	cache  *Cache
	in     *events.Channel[events.MarketUpdate]

	mu       sync.Mutex
	expected map[string]int64 // ticker -> expected next sequence
}

func NewWatcher(wsURL string, signer *kalshi_auth.Signer, cache *Cache, status *events.Bus, connectTimeout, idleTimeout time.Duration, channelCapacity int) *Watcher {
	in := events.NewChannel[events.MarketUpdate]("market_update", channelCapacity, events.DropOldest)
	client := kalshi_ws.NewClient(wsURL, signer, in, status, connectTimeout, idleTimeout)

	return &Watcher{
		client:   client,
		cache:    cache,
		in:       in,
		expected: make(map[string]int64),
	}
}

// Start connects the underlying client and begins draining updates into
// the cache in a background goroutine that runs until ctx is cancelled.
// Returns once the connection is established (or failed).
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.client.Connect(ctx); err != nil {
		return err
	}
	go w.drain(ctx)
	return nil
}

// Subscribe registers tickers of interest, called by Brain as it builds
// each game's threshold map.
func (w *Watcher) Subscribe(tickers []string) error {
	return w.client.SubscribeTickers(tickers)
}

func (w *Watcher) drain(ctx context.Context) {
	ch := w.in.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			w.apply(update)
		}
	}
}

func (w *Watcher) apply(update events.MarketUpdate) {
	if update.Snapshot {
		w.cache.ApplySnapshot(update.Ticker, update.Side, update.Levels)
		w.mu.Lock()
		w.expected[update.Ticker] = update.Seq + 1
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	exp, known := w.expected[update.Ticker]
	w.mu.Unlock()

	if known && update.Seq != exp {
		telemetry.Metrics.SeqGaps.Inc()
		telemetry.Warnf("watcher: sequence gap on %s: expected=%d got=%d, marking stale", update.Ticker, exp, update.Seq)
		w.cache.MarkStale(update.Ticker)
		w.mu.Lock()
		delete(w.expected, update.Ticker)
		w.mu.Unlock()
		// Drop this delta; re-subscribing re-requests an initial snapshot,
		// which resets the expected sequence once applied.
		_ = w.client.RequestResnapshot(update.Ticker)
		return
	}

	for _, level := range update.Levels {
		w.cache.ApplyDelta(update.Ticker, update.Side, level)
	}

	w.mu.Lock()
	w.expected[update.Ticker] = update.Seq + 1
	w.mu.Unlock()
}

// Close shuts down the underlying connection.
func (w *Watcher) Close() error {
	return w.client.Close()
}
