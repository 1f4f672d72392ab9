package risk

import (
	"sync"
	"sync/atomic"
)

// Limits bundles every threshold Shield enforces.
type Limits struct {
	MaxDailyLossCents    int
	MaxOpenExposureCents int
	MaxTradesPerGame     int
	NetPayoutCents       int
}

// Snapshot is the immutable, atomically-published view of RiskState Brain
// reads on the hot path (spec.md §3: "reads either under the same lock or
// via an atomic snapshot pointer for the hot path").
type Snapshot struct {
	RealizedPnLCents  int
	OpenExposureCents int
	TradesThisGame    map[string]int
	IsHalted          bool
	HaltReason        string
	HaltedGames       map[string]bool
}

func (s *Snapshot) TradeCount(gameID string) int {
	if s == nil {
		return 0
	}
	return s.TradesThisGame[gameID]
}

func (s *Snapshot) GameHalted(gameID string) bool {
	if s == nil {
		return false
	}
	return s.HaltedGames[gameID]
}

type costKey struct {
	GameID string
	Ticker string
}

type costEntry struct {
	Qty      int
	CostCents int
}

// State is the single process-wide RiskState: one mutex-guarded struct
// with an atomic.Pointer[Snapshot] published on every mutation, generalized
// from the teacher's lanes.RiskGuard/SpendGuard per-lane atomic counters to
// a single process-wide snapshot (spec.md §3/§9 explicitly call for this).
// All writes — from both Shield and Brain's optimistic trade-count
// increment — go through this type's exported methods, preserving the
// "all mutations happen under one lock" discipline of spec.md §4.6 even
// though two components call in.
type State struct {
	mu     sync.Mutex
	snap   atomic.Pointer[Snapshot]
	limits Limits

	costBasis map[costKey]costEntry
}

func NewState(limits Limits) *State {
	s := &State{
		limits:    limits,
		costBasis: make(map[costKey]costEntry),
	}
	s.snap.Store(&Snapshot{
		TradesThisGame: make(map[string]int),
		HaltedGames:    make(map[string]bool),
	})
	return s
}

// Read returns the current snapshot. Safe for concurrent use, lock-free.
func (s *State) Read() *Snapshot {
	return s.snap.Load()
}

// publish clones cur, lets mutate edit the clone, then swaps it in. Caller
// must hold s.mu.
func (s *State) publish(mutate func(next *Snapshot)) {
	cur := s.snap.Load()
	next := &Snapshot{
		RealizedPnLCents:  cur.RealizedPnLCents,
		OpenExposureCents: cur.OpenExposureCents,
		TradesThisGame:    cloneCounts(cur.TradesThisGame),
		IsHalted:          cur.IsHalted,
		HaltReason:        cur.HaltReason,
		HaltedGames:       cloneFlags(cur.HaltedGames),
	}
	mutate(next)
	s.snap.Store(next)
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFlags(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IncrementTradeCount bumps trades_this_game[gameID] by delta (positive for
// Brain's optimistic increment on emit, negative for Shield's correction on
// Rejected/Error) and re-evaluates the per-game trade-count halt.
func (s *State) IncrementTradeCount(gameID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publish(func(next *Snapshot) {
		next.TradesThisGame[gameID] += delta
		if next.TradesThisGame[gameID] >= s.limits.MaxTradesPerGame {
			next.HaltedGames[gameID] = true
		}
	})
}

// ApplyFill updates exposure/cost-basis for a buy fill (Filled/PartialFill)
// and re-evaluates the global exposure halt.
func (s *State) ApplyFill(gameID, ticker string, qty, avgPriceCents int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	costCents := qty * avgPriceCents
	key := costKey{GameID: gameID, Ticker: ticker}
	entry := s.costBasis[key]
	entry.Qty += qty
	entry.CostCents += costCents
	s.costBasis[key] = entry

	s.publish(func(next *Snapshot) {
		next.OpenExposureCents += costCents
		if next.OpenExposureCents > s.limits.MaxOpenExposureCents {
			next.IsHalted = true
			next.HaltReason = "exposure"
		}
	})
}

// SettleGame marks every open cost-basis entry for gameID as resolved YES
// (the only contracts this engine buys are ones Brain already determined
// are certain to resolve YES) and realizes P&L. Chosen settlement timing:
// mark on game end (SPEC_FULL.md §4.6 Open Question decision).
func (s *State) SettleGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settledValue, settledCost int
	for key, entry := range s.costBasis {
		if key.GameID != gameID {
			continue
		}
		settledValue += entry.Qty * s.limits.NetPayoutCents
		settledCost += entry.CostCents
		delete(s.costBasis, key)
	}
	if settledValue == 0 && settledCost == 0 {
		return
	}

	pnl := settledValue - settledCost
	s.publish(func(next *Snapshot) {
		next.RealizedPnLCents += pnl
		next.OpenExposureCents -= settledCost
		if next.OpenExposureCents < 0 {
			next.OpenExposureCents = 0
		}
		if next.RealizedPnLCents <= -s.limits.MaxDailyLossCents {
			next.IsHalted = true
			next.HaltReason = "daily_loss"
		}
	})
}

// Halt unconditionally trips the global halt flag (used for auth/signature
// failures detected at runtime, spec.md §7).
func (s *State) Halt(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(func(next *Snapshot) {
		next.IsHalted = true
		next.HaltReason = reason
	})
}

// ResetExposureHalt manually clears an "exposure" halt. Exposure halts are
// sticky-until-manual-reset by default (spec.md §9 Open Question decision);
// this is the only way to clear one.
func (s *State) ResetExposureHalt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(func(next *Snapshot) {
		if next.HaltReason == "exposure" {
			next.IsHalted = false
			next.HaltReason = ""
		}
	})
}
