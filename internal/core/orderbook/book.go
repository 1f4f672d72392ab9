package orderbook

import (
	"time"

	"github.com/scorearb/arbiter/internal/events"
)

// Side and PriceLevel alias the event wire types so callers outside
// internal/events don't need a second import for book/cache operations.
type Side = events.Side
type PriceLevel = events.PriceLevel

// Book is a per-ticker aggregated view of the exchange orderbook: best YES
// ask, best NO ask, optional full depth, and a staleness flag. Invariant:
// ask prices are in [1, 99]; if the book is empty, no edge is computable.
type Book struct {
	Ticker      string
	BestYesAsk  int // 0 if no resting ask
	BestNoAsk   int
	YesDepth    []events.PriceLevel
	NoDepth     []events.PriceLevel
	UpdatedAt   time.Time
	Stale       bool
}

// HasYesAsk reports whether the book has a computable best YES ask.
func (b *Book) HasYesAsk() bool {
	return b != nil && !b.Stale && b.BestYesAsk >= 1 && b.BestYesAsk <= 99
}

// applySnapshot replaces one side of the book wholesale.
func (b *Book) applySnapshot(side events.Side, levels []events.PriceLevel, at time.Time) {
	best := bestAsk(levels)
	if side == events.SideYes {
		b.YesDepth = levels
		b.BestYesAsk = best
	} else {
		b.NoDepth = levels
		b.BestNoAsk = best
	}
	b.UpdatedAt = at
	b.Stale = false
}

// applyDelta patches a single price level: Size is the new resting size at
// that price (spec.md delta semantics — the exchange sends the post-delta
// size, not an increment), with 0 meaning the level is removed.
func (b *Book) applyDelta(side events.Side, level events.PriceLevel, at time.Time) {
	depth := &b.YesDepth
	if side == events.SideNo {
		depth = &b.NoDepth
	}
	*depth = upsertLevel(*depth, level)

	best := bestAsk(*depth)
	if side == events.SideYes {
		b.BestYesAsk = best
	} else {
		b.BestNoAsk = best
	}
	b.UpdatedAt = at
}

func upsertLevel(levels []events.PriceLevel, level events.PriceLevel) []events.PriceLevel {
	for i, l := range levels {
		if l.PriceCents == level.PriceCents {
			if level.Size <= 0 {
				return append(levels[:i], levels[i+1:]...)
			}
			levels[i].Size = level.Size
			return levels
		}
	}
	if level.Size > 0 {
		levels = append(levels, level)
	}
	return levels
}

// bestAsk returns the lowest price among resting levels (the cheapest ask).
func bestAsk(levels []events.PriceLevel) int {
	best := 0
	for _, l := range levels {
		if l.Size <= 0 {
			continue
		}
		if best == 0 || l.PriceCents < best {
			best = l.PriceCents
		}
	}
	return best
}
