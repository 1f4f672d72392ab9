package orderbook

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache is the concurrent ticker -> Book mapping spec.md §4.3 requires:
// single writer (Watcher), single reader (Brain), per-ticker atomicity via
// an atomic.Pointer so a reader always observes a complete, consistent
// Book for one ticker even while Watcher is mutating others concurrently.
// Cross-ticker atomicity is not provided or required (DESIGN NOTES §9).
type Cache struct {
	books sync.Map // ticker string -> *atomic.Pointer[Book]
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns a snapshot of ticker's book, or nil if unknown.
func (c *Cache) Get(ticker string) *Book {
	v, ok := c.books.Load(ticker)
	if !ok {
		return nil
	}
	return v.(*atomic.Pointer[Book]).Load()
}

// entry returns (creating if necessary) the atomic slot for ticker.
func (c *Cache) entry(ticker string) *atomic.Pointer[Book] {
	v, ok := c.books.Load(ticker)
	if ok {
		return v.(*atomic.Pointer[Book])
	}
	ptr := &atomic.Pointer[Book]{}
	actual, _ := c.books.LoadOrStore(ticker, ptr)
	return actual.(*atomic.Pointer[Book])
}

// MarkStale flags ticker's cached book stale (called by Watcher on a
// sequence gap), so Brain's orderbook read skips it until a fresh snapshot
// lands. A WebSocket reconnect does not mark any ticker stale.
func (c *Cache) MarkStale(ticker string) {
	slot := c.entry(ticker)
	for {
		old := slot.Load()
		var next Book
		if old != nil {
			next = *old
		} else {
			next = Book{Ticker: ticker}
		}
		next.Stale = true
		if slot.CompareAndSwap(old, &next) {
			return
		}
	}
}

// ApplySnapshot replaces one side of ticker's book and clears staleness.
func (c *Cache) ApplySnapshot(ticker string, side Side, levels []PriceLevel) {
	slot := c.entry(ticker)
	for {
		old := slot.Load()
		var next Book
		if old != nil {
			next = *old
		} else {
			next = Book{Ticker: ticker}
		}
		next.applySnapshot(side, levels, time.Now())
		if slot.CompareAndSwap(old, &next) {
			return
		}
	}
}

// ApplyDelta patches a single price level on ticker's book.
func (c *Cache) ApplyDelta(ticker string, side Side, level PriceLevel) {
	slot := c.entry(ticker)
	for {
		old := slot.Load()
		var next Book
		if old != nil {
			next = *old
		} else {
			next = Book{Ticker: ticker}
		}
		next.applyDelta(side, level, time.Now())
		if slot.CompareAndSwap(old, &next) {
			return
		}
	}
}
