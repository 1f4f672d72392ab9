package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOpenStoreCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
}

func TestInsertAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	row := Row{
		Ts:                time.Now(),
		EventType:         "halt",
		GameID:            "game-1",
		Reason:            "exposure",
		RealizedPnLCents:  -500,
		OpenExposureCents: 1200,
	}
	if err := store.Insert(row); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM risk_events`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestReopenPreservesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := store.Insert(Row{Ts: time.Now(), EventType: "breaker_open", Reason: "T-1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	store.Close()

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen OpenStore: %v", err)
	}
	defer reopened.Close()

	var count int
	if err := reopened.db.QueryRow(`SELECT COUNT(*) FROM risk_events`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row to survive reopen, got %d", count)
	}
}

func TestCloseNilStoreIsSafe(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatalf("expected nil-safe Close, got %v", err)
	}
}
