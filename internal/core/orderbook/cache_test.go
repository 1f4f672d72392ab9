package orderbook

import (
	"testing"

	"github.com/scorearb/arbiter/internal/events"
)

func TestCacheGetUnknownTickerIsNil(t *testing.T) {
	c := NewCache()
	if c.Get("UNKNOWN") != nil {
		t.Fatal("expected nil book for unknown ticker")
	}
}

func TestCacheApplySnapshotThenGet(t *testing.T) {
	c := NewCache()
	c.ApplySnapshot("T-1", events.SideYes, []events.PriceLevel{{PriceCents: 45, Size: 10}})

	book := c.Get("T-1")
	if book == nil {
		t.Fatal("expected a book after ApplySnapshot")
	}
	if book.BestYesAsk != 45 {
		t.Fatalf("expected best yes ask 45, got %d", book.BestYesAsk)
	}
}

func TestCacheMarkStaleOnUnknownTicker(t *testing.T) {
	c := NewCache()
	c.MarkStale("T-1")
	book := c.Get("T-1")
	if book == nil || !book.Stale {
		t.Fatal("expected MarkStale to create a stale placeholder book")
	}
}

func TestCacheMarkStalePreservesExistingData(t *testing.T) {
	c := NewCache()
	c.ApplySnapshot("T-1", events.SideYes, []events.PriceLevel{{PriceCents: 45, Size: 10}})
	c.MarkStale("T-1")

	book := c.Get("T-1")
	if !book.Stale {
		t.Fatal("expected book to be marked stale")
	}
	if book.BestYesAsk != 45 {
		t.Fatalf("expected prior best ask preserved, got %d", book.BestYesAsk)
	}
}

func TestCacheApplyDeltaCreatesBookIfMissing(t *testing.T) {
	c := NewCache()
	c.ApplyDelta("T-1", events.SideYes, events.PriceLevel{PriceCents: 60, Size: 5})
	book := c.Get("T-1")
	if book == nil || book.BestYesAsk != 60 {
		t.Fatalf("expected a book with best ask 60, got %+v", book)
	}
}

func TestCacheIsolatesTickers(t *testing.T) {
	c := NewCache()
	c.ApplySnapshot("T-1", events.SideYes, []events.PriceLevel{{PriceCents: 45, Size: 10}})
	c.ApplySnapshot("T-2", events.SideYes, []events.PriceLevel{{PriceCents: 70, Size: 10}})

	if c.Get("T-1").BestYesAsk != 45 {
		t.Fatal("T-1 should be unaffected by T-2's snapshot")
	}
	if c.Get("T-2").BestYesAsk != 70 {
		t.Fatal("T-2 should have its own best ask")
	}
}
