package oracle

import (
	"context"
	"time"
)

// CanonicalGameRecord is one sport's score-provider record, normalized to
// the fields spec.md §"Score feed adapter" requires: game id, status, away
// code, home code, away score, home score, start time.
type CanonicalGameRecord struct {
	GameID     string
	Sport      string
	Status     string // provider's raw status string, lowercased/trimmed
	AwayTeam   string
	HomeTeam   string
	AwayScore  int
	HomeScore  int
	Period     string
	KickoffUTC time.Time
}

var finalStatuses = map[string]bool{
	"finished": true, "final": true, "ft": true, "aot": true,
	"after ot": true, "after extra time": true, "cancelled": true,
	"postponed": true, "abandoned": true,
}

var notStartedStatuses = map[string]bool{
	"ns": true, "not started": true, "scheduled": true, "postp": true,
}

// InProgress reports whether the record represents a live, ongoing game.
// Oracle keeps in-progress and final records and discards the rest.
func (r CanonicalGameRecord) InProgress() bool {
	return !finalStatuses[r.Status] && !notStartedStatuses[r.Status]
}

func (r CanonicalGameRecord) Final() bool {
	return finalStatuses[r.Status]
}

// ScoreAdapter is implemented by each pluggable score-feed provider
// (spec.md: "Adapters are pluggable; at least one must be provided").
type ScoreAdapter interface {
	Poll(ctx context.Context, sport, competitionID string) ([]CanonicalGameRecord, error)
}
