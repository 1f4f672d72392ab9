package risk

import "testing"

func testLimits() Limits {
	return Limits{
		MaxDailyLossCents:    1000,
		MaxOpenExposureCents: 500,
		MaxTradesPerGame:     3,
		NetPayoutCents:       100,
	}
}

func TestNewStateStartsClean(t *testing.T) {
	s := NewState(testLimits())
	snap := s.Read()
	if snap.IsHalted {
		t.Fatal("expected fresh state to not be halted")
	}
	if snap.RealizedPnLCents != 0 || snap.OpenExposureCents != 0 {
		t.Fatalf("expected zeroed snapshot, got %+v", snap)
	}
}

func TestIncrementTradeCountHaltsGameAtLimit(t *testing.T) {
	s := NewState(testLimits())
	s.IncrementTradeCount("game-1", 1)
	s.IncrementTradeCount("game-1", 1)
	if s.Read().GameHalted("game-1") {
		t.Fatal("game should not be halted before reaching MaxTradesPerGame")
	}

	s.IncrementTradeCount("game-1", 1)
	snap := s.Read()
	if !snap.GameHalted("game-1") {
		t.Fatal("expected game-1 to be halted at MaxTradesPerGame")
	}
	if snap.TradeCount("game-1") != 3 {
		t.Fatalf("expected trade count 3, got %d", snap.TradeCount("game-1"))
	}
}

func TestIncrementTradeCountNegativeCorrection(t *testing.T) {
	s := NewState(testLimits())
	s.IncrementTradeCount("game-1", 1)
	s.IncrementTradeCount("game-1", -1)
	if got := s.Read().TradeCount("game-1"); got != 0 {
		t.Fatalf("expected trade count back to 0, got %d", got)
	}
}

func TestIncrementTradeCountIsolatedPerGame(t *testing.T) {
	s := NewState(testLimits())
	s.IncrementTradeCount("game-1", 3)
	if s.Read().GameHalted("game-2") {
		t.Fatal("game-2 must not be affected by game-1's trade count")
	}
}

func TestApplyFillTracksExposure(t *testing.T) {
	s := NewState(testLimits())
	s.ApplyFill("game-1", "TICKER-A", 2, 50)
	snap := s.Read()
	if snap.OpenExposureCents != 100 {
		t.Fatalf("expected exposure 100, got %d", snap.OpenExposureCents)
	}
	if snap.IsHalted {
		t.Fatal("expected no halt under exposure limit")
	}
}

func TestApplyFillHaltsOnExposureBreach(t *testing.T) {
	s := NewState(testLimits())
	s.ApplyFill("game-1", "TICKER-A", 10, 60)
	snap := s.Read()
	if !snap.IsHalted || snap.HaltReason != "exposure" {
		t.Fatalf("expected exposure halt, got %+v", snap)
	}
}

func TestSettleGameRealizesPnL(t *testing.T) {
	s := NewState(testLimits())
	s.ApplyFill("game-1", "TICKER-A", 2, 50)
	s.SettleGame("game-1")

	snap := s.Read()
	// bought 2 @ 50c = 100c cost, settled at NetPayoutCents=100 each = 200c value
	if snap.RealizedPnLCents != 100 {
		t.Fatalf("expected realized pnl 100, got %d", snap.RealizedPnLCents)
	}
	if snap.OpenExposureCents != 0 {
		t.Fatalf("expected exposure cleared after settlement, got %d", snap.OpenExposureCents)
	}
}

func TestSettleGameOnlyAffectsItsOwnGame(t *testing.T) {
	s := NewState(testLimits())
	s.ApplyFill("game-1", "TICKER-A", 1, 50)
	s.ApplyFill("game-2", "TICKER-B", 1, 50)
	s.SettleGame("game-1")

	snap := s.Read()
	if snap.OpenExposureCents != 50 {
		t.Fatalf("expected game-2 exposure of 50 to remain open, got %d", snap.OpenExposureCents)
	}
}

func TestSettleGameNoOpWithoutFills(t *testing.T) {
	s := NewState(testLimits())
	s.SettleGame("never-traded")
	snap := s.Read()
	if snap.RealizedPnLCents != 0 {
		t.Fatalf("expected no pnl change, got %d", snap.RealizedPnLCents)
	}
}

func TestSettleGameHaltsOnDailyLoss(t *testing.T) {
	limits := testLimits()
	limits.MaxDailyLossCents = 50
	limits.NetPayoutCents = 40
	s := NewState(limits)

	// buy at a price above net payout, guaranteeing a loss on settlement
	s.ApplyFill("game-1", "TICKER-A", 1, 95)
	s.SettleGame("game-1")

	snap := s.Read()
	if !snap.IsHalted || snap.HaltReason != "daily_loss" {
		t.Fatalf("expected daily_loss halt, got %+v", snap)
	}
}

func TestHaltSetsReason(t *testing.T) {
	s := NewState(testLimits())
	s.Halt("signature_failure")
	snap := s.Read()
	if !snap.IsHalted || snap.HaltReason != "signature_failure" {
		t.Fatalf("expected halt with custom reason, got %+v", snap)
	}
}

func TestResetExposureHaltOnlyClearsExposureReason(t *testing.T) {
	s := NewState(testLimits())
	s.Halt("signature_failure")
	s.ResetExposureHalt()
	if !s.Read().IsHalted {
		t.Fatal("ResetExposureHalt must not clear a non-exposure halt")
	}

	s2 := NewState(testLimits())
	s2.ApplyFill("game-1", "TICKER-A", 10, 60)
	s2.ResetExposureHalt()
	if s2.Read().IsHalted {
		t.Fatal("expected exposure halt to be cleared")
	}
}

func TestSnapshotNilSafety(t *testing.T) {
	var snap *Snapshot
	if snap.TradeCount("x") != 0 {
		t.Fatal("nil snapshot TradeCount must return 0")
	}
	if snap.GameHalted("x") {
		t.Fatal("nil snapshot GameHalted must return false")
	}
}
