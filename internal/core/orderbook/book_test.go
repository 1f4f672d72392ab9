package orderbook

import (
	"testing"
	"time"

	"github.com/scorearb/arbiter/internal/events"
)

func TestHasYesAskNilBook(t *testing.T) {
	var b *Book
	if b.HasYesAsk() {
		t.Fatal("expected nil book to have no yes ask")
	}
}

func TestHasYesAskStaleBook(t *testing.T) {
	b := &Book{BestYesAsk: 50, Stale: true}
	if b.HasYesAsk() {
		t.Fatal("expected a stale book to have no usable yes ask")
	}
}

func TestHasYesAskOutOfRange(t *testing.T) {
	b := &Book{BestYesAsk: 0}
	if b.HasYesAsk() {
		t.Fatal("expected BestYesAsk 0 to mean no resting ask")
	}
	b.BestYesAsk = 100
	if b.HasYesAsk() {
		t.Fatal("expected BestYesAsk above 99 to be invalid")
	}
}

func TestHasYesAskValidRange(t *testing.T) {
	b := &Book{BestYesAsk: 50}
	if !b.HasYesAsk() {
		t.Fatal("expected BestYesAsk 50 to be usable")
	}
}

func TestApplySnapshotSetsBestAsk(t *testing.T) {
	b := &Book{Ticker: "T-1", Stale: true}
	b.applySnapshot(events.SideYes, []events.PriceLevel{{PriceCents: 60, Size: 5}, {PriceCents: 55, Size: 3}}, time.Now())

	if b.BestYesAsk != 55 {
		t.Fatalf("expected best yes ask 55, got %d", b.BestYesAsk)
	}
	if b.Stale {
		t.Fatal("expected snapshot to clear staleness")
	}
}

func TestApplySnapshotIgnoresZeroSizeLevels(t *testing.T) {
	b := &Book{}
	b.applySnapshot(events.SideYes, []events.PriceLevel{{PriceCents: 40, Size: 0}, {PriceCents: 60, Size: 5}}, time.Now())
	if b.BestYesAsk != 60 {
		t.Fatalf("expected zero-size level ignored, best ask 60, got %d", b.BestYesAsk)
	}
}

func TestApplyDeltaUpsertsLevel(t *testing.T) {
	b := &Book{}
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 50, Size: 10}, time.Now())
	if b.BestYesAsk != 50 {
		t.Fatalf("expected best ask 50 after first delta, got %d", b.BestYesAsk)
	}

	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 40, Size: 5}, time.Now())
	if b.BestYesAsk != 40 {
		t.Fatalf("expected best ask to improve to 40, got %d", b.BestYesAsk)
	}
}

func TestApplyDeltaRemovesLevelAtZeroSize(t *testing.T) {
	b := &Book{}
	now := time.Now()
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 40, Size: 5}, now)
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 50, Size: 5}, now)
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 40, Size: 0}, now)

	if b.BestYesAsk != 50 {
		t.Fatalf("expected removal of the better level to leave 50 as best, got %d", b.BestYesAsk)
	}
	if len(b.YesDepth) != 1 {
		t.Fatalf("expected 1 remaining depth level, got %d", len(b.YesDepth))
	}
}

func TestApplyDeltaUpdatesExistingLevelSize(t *testing.T) {
	b := &Book{}
	now := time.Now()
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 40, Size: 5}, now)
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 40, Size: 20}, now)

	if len(b.YesDepth) != 1 {
		t.Fatalf("expected 1 depth level, got %d", len(b.YesDepth))
	}
	if b.YesDepth[0].Size != 20 {
		t.Fatalf("expected size updated to 20, got %d", b.YesDepth[0].Size)
	}
}

func TestApplyDeltaTracksNoSideIndependently(t *testing.T) {
	b := &Book{}
	now := time.Now()
	b.applyDelta(events.SideYes, events.PriceLevel{PriceCents: 40, Size: 5}, now)
	b.applyDelta(events.SideNo, events.PriceLevel{PriceCents: 30, Size: 5}, now)

	if b.BestYesAsk != 40 {
		t.Fatalf("expected yes ask unaffected by no-side delta, got %d", b.BestYesAsk)
	}
	if b.BestNoAsk != 30 {
		t.Fatalf("expected no ask 30, got %d", b.BestNoAsk)
	}
}
