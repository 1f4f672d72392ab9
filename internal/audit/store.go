package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/scorearb/arbiter/internal/telemetry"

	_ "modernc.org/sqlite"
)

// Row is one audit-logged risk or breaker transition.
type Row struct {
	Ts         time.Time
	EventType  string // "halt" (Shield) or "breaker_open" (Sniper)
	GameID     string // empty for process-wide events
	Reason     string
	RealizedPnLCents  int
	OpenExposureCents int
}

// Store persists circuit-breaker trips and risk halts to SQLite, using a
// single writer (mu) over a WAL-mode database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS risk_events (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		ts                  TEXT    NOT NULL,
		event_type          TEXT    NOT NULL,
		game_id             TEXT,
		reason              TEXT,
		realized_pnl_cents  INTEGER NOT NULL DEFAULT 0,
		open_exposure_cents INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_risk_events_ts ON risk_events(ts)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init index: %w", err)
	}

	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM risk_events`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}
	telemetry.Infof("audit: started risk event store  path=%s  rows=%d", path, count)

	return &Store{db: db}, nil
}

func (s *Store) Insert(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO risk_events (
			ts, event_type, game_id, reason, realized_pnl_cents, open_exposure_cents
		) VALUES (?,?,?,?,?,?)`,
		row.Ts.UTC().Format(time.RFC3339Nano),
		row.EventType,
		row.GameID,
		row.Reason,
		row.RealizedPnLCents,
		row.OpenExposureCents,
	)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
