package oracle

import (
	"testing"
	"time"

	"github.com/scorearb/arbiter/internal/config"
	"github.com/scorearb/arbiter/internal/events"
)

func newTestOracle() *Oracle {
	out := events.NewChannel[events.GameEvent]("test_game_event", 8, events.DropOldest)
	return New(nil, config.SeriesDocument{}, time.Second, out, nil)
}

func TestShouldEmitFirstSightingAlwaysEmits(t *testing.T) {
	o := newTestOracle()
	if !o.shouldEmit("game-1", 3, false) {
		t.Fatal("expected first sighting of a game to emit")
	}
}

func TestShouldEmitDedupsUnchangedTotal(t *testing.T) {
	o := newTestOracle()
	o.shouldEmit("game-1", 3, false)
	if o.shouldEmit("game-1", 3, false) {
		t.Fatal("expected unchanged total to be deduped")
	}
}

func TestShouldEmitOnChangedTotal(t *testing.T) {
	o := newTestOracle()
	o.shouldEmit("game-1", 3, false)
	if !o.shouldEmit("game-1", 4, false) {
		t.Fatal("expected changed total to emit")
	}
}

func TestShouldEmitAlwaysEmitsOnFinalRegardlessOfTotal(t *testing.T) {
	o := newTestOracle()
	o.shouldEmit("game-1", 3, false)
	if !o.shouldEmit("game-1", 3, true) {
		t.Fatal("expected final status to always emit even with unchanged total")
	}
}

func TestShouldEmitResetsAfterFinal(t *testing.T) {
	o := newTestOracle()
	o.shouldEmit("game-1", 3, true)
	if !o.shouldEmit("game-1", 3, false) {
		t.Fatal("expected a re-sighting after final to be treated as unseen")
	}
}

func TestClockSkewOKAllowsZeroKickoff(t *testing.T) {
	o := newTestOracle()
	rec := CanonicalGameRecord{}
	if !o.clockSkewOK(rec, time.Now()) {
		t.Fatal("expected zero kickoff to be allowed")
	}
}

func TestClockSkewOKRejectsFarFutureKickoff(t *testing.T) {
	o := newTestOracle()
	now := time.Now()
	rec := CanonicalGameRecord{KickoffUTC: now.Add(time.Hour)}
	if o.clockSkewOK(rec, now) {
		t.Fatal("expected far-future kickoff to be rejected")
	}
}

func TestClockSkewOKAllowsNearFutureKickoff(t *testing.T) {
	o := newTestOracle()
	now := time.Now()
	rec := CanonicalGameRecord{KickoffUTC: now.Add(time.Minute)}
	if !o.clockSkewOK(rec, now) {
		t.Fatal("expected near-future kickoff within guard offset to be allowed")
	}
}

func TestApplyBackoffStartsAt500msAndDoubles(t *testing.T) {
	o := newTestOracle()
	o.applyBackoff("basketball")
	if o.backoff["basketball"] != 500*time.Millisecond {
		t.Fatalf("expected initial backoff 500ms, got %v", o.backoff["basketball"])
	}
	o.applyBackoff("basketball")
	if o.backoff["basketball"] != time.Second {
		t.Fatalf("expected doubled backoff 1s, got %v", o.backoff["basketball"])
	}
}

func TestClearBackoffResets(t *testing.T) {
	o := newTestOracle()
	o.applyBackoff("basketball")
	o.clearBackoff("basketball")
	if _, ok := o.backoff["basketball"]; ok {
		t.Fatal("expected backoff entry removed after clear")
	}
}
