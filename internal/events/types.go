package events

import "time"

// Side is a contract side.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// GameEvent is a score-change observation. Emitted by Oracle when the
// observed total differs from the last total Oracle saw for this game_id,
// and on every poll that reports the game final.
type GameEvent struct {
	GameID       string    // provider-scoped identifier
	Sport        string    // sport tag, e.g. "basketball"
	KickoffUTC   time.Time // zero if unknown
	AwayTeam     string    // provider team abbreviation
	HomeTeam     string    // provider team abbreviation
	AwayScore    int
	HomeScore    int
	Total        int // invariant: Total == AwayScore + HomeScore
	Period       string
	Status       string // provider status string, e.g. "in progress", "final"
	ObservedAt   time.Time // monotonic observation timestamp
}

// Final reports whether the provider has marked this game as complete,
// the trigger Shield uses to settle open cost-basis for the game
// (SPEC_FULL.md §4.6 Open Question decision: mark settlement on game end).
func (g GameEvent) Final() bool {
	switch g.Status {
	case "final", "complete", "completed", "closed":
		return true
	default:
		return false
	}
}

// PriceLevel is one rung of an orderbook.
type PriceLevel struct {
	PriceCents int
	Size       int
}

// MarketUpdate is an orderbook delta or snapshot for one contract.
// Applied into the orderbook cache by Watcher; never queued to Brain.
type MarketUpdate struct {
	Ticker   string
	Seq      int64
	Side     Side
	Snapshot bool // true if this update replaces the book rather than patching it
	Levels   []PriceLevel
}

// ExecuteTrade is a command from Brain to Sniper.
type ExecuteTrade struct {
	Ticker        string
	Side          Side // always SideYes in the base strategy
	LimitPriceCents int
	Quantity      int
	SignalAt      time.Time
	GameID        string
	ScoreAtDecision int // total score at decision time
}

// FillKind enumerates FillReport variants.
type FillKind string

const (
	FillFilled  FillKind = "filled"
	FillPartial FillKind = "partial_fill"
	FillRejected FillKind = "rejected"
	FillError   FillKind = "error"
)

// FillReport is the outcome Sniper publishes for exactly one ExecuteTrade.
type FillReport struct {
	Kind          FillKind
	Ticker        string
	GameID        string
	Qty           int
	AvgPriceCents int
	Reason        string // populated for Rejected/Error
	Timestamp     time.Time
}
