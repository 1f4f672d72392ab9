package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/scorearb/arbiter/internal/config"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// maxBackoff caps the poll loop's exponential backoff on transient fetch
// failures. The loop itself never exits on a failed poll — only ctx
// cancellation stops it (spec.md: Oracle "never exits on a feed error").
const maxBackoff = 5 * time.Second

// Oracle is the score-poller agent. It holds one ScoreAdapter per process
// (pluggable; GoalServe ships as the default) and polls every configured
// sport on a fixed interval, publishing a GameEvent only when a game's
// total points/goals differs from the last total Oracle saw for it.
type Oracle struct {
	adapter  ScoreAdapter
	series   config.SeriesDocument
	interval time.Duration
	out      *events.Channel[events.GameEvent]
	status   *events.Bus

	mu        sync.Mutex
	lastTotal map[string]int // game_id -> last published total
	backoff   map[string]time.Duration
}

// status may be nil in tests that don't care about Shield's settlement
// trigger; Oracle guards every publish on it being non-nil.
func New(adapter ScoreAdapter, series config.SeriesDocument, interval time.Duration, out *events.Channel[events.GameEvent], status *events.Bus) *Oracle {
	return &Oracle{
		adapter:   adapter,
		series:    series,
		interval:  interval,
		out:       out,
		status:    status,
		lastTotal: make(map[string]int),
		backoff:   make(map[string]time.Duration),
	}
}

// Run polls every sport in series on a ticker until ctx is cancelled.
func (o *Oracle) Run(ctx context.Context) {
	sports := make([]string, 0, len(o.series))
	for sport := range o.series {
		sports = append(sports, sport)
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.pollAll(ctx, sports)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.pollAll(ctx, sports)
		}
	}
}

func (o *Oracle) pollAll(ctx context.Context, sports []string) {
	for _, sport := range sports {
		o.pollSport(ctx, sport)
	}
}

func (o *Oracle) pollSport(ctx context.Context, sport string) {
	cfg := o.series[sport]

	start := time.Now()
	records, err := o.adapter.Poll(ctx, sport, cfg.ScoreProviderCompetitionID)
	telemetry.Metrics.ScorePollLatency.Record(time.Since(start))
	if err != nil {
		telemetry.Metrics.ScorePollErrors.Inc()
		o.applyBackoff(sport)
		telemetry.Warnf("oracle: poll %s: %v", sport, err)
		return
	}
	o.clearBackoff(sport)

	now := time.Now().UTC()
	for _, rec := range records {
		if !rec.InProgress() && !rec.Final() {
			continue
		}
		if !o.clockSkewOK(rec, now) {
			telemetry.Warnf("oracle: discarding game=%s kickoff %s ahead of clock skew guard", rec.GameID, rec.KickoffUTC)
			continue
		}

		total := rec.AwayScore + rec.HomeScore
		status := "in progress"
		if rec.Final() {
			status = "final"
		}

		if !o.shouldEmit(rec.GameID, total, rec.Final()) {
			continue
		}

		evt := events.GameEvent{
			GameID:     rec.GameID,
			Sport:      sport,
			KickoffUTC: rec.KickoffUTC,
			AwayTeam:   rec.AwayTeam,
			HomeTeam:   rec.HomeTeam,
			AwayScore:  rec.AwayScore,
			HomeScore:  rec.HomeScore,
			Total:      total,
			Period:     rec.Period,
			Status:     status,
			ObservedAt: now,
		}
		o.out.Publish(evt)
		telemetry.Metrics.GameEventsEmitted.Inc()

		if evt.Final() && o.status != nil {
			o.status.Publish(events.Event{
				Type:      events.EventGameFinal,
				GameID:    evt.GameID,
				Sport:     sport,
				Timestamp: now,
				Payload:   events.GameFinalEvent{GameID: evt.GameID},
			})
		}
	}
}

// clockSkewGuardOffset bounds how far ahead of the local clock a kickoff
// time may be before Oracle treats the record as bad data (spec.md:
// "discards records whose kickoff timestamp is more than a small bounded
// future offset ahead").
const clockSkewGuardOffset = 10 * time.Minute

func (o *Oracle) clockSkewOK(rec CanonicalGameRecord, now time.Time) bool {
	if rec.KickoffUTC.IsZero() {
		return true
	}
	return rec.KickoffUTC.Before(now.Add(clockSkewGuardOffset))
}

// shouldEmit applies the dedup-by-total-change rule: emit only when the
// total differs from the last one Oracle saw for this game_id, or whenever
// the record is final (Shield needs the final GameEvent even if the score
// didn't move on the last tick, to trigger settlement). A final record
// clears the game's last total, so every poll that still reports the game
// final emits again.
func (o *Oracle) shouldEmit(gameID string, total int, final bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	last, seen := o.lastTotal[gameID]
	o.lastTotal[gameID] = total
	if final {
		delete(o.lastTotal, gameID)
		return true
	}
	return !seen || last != total
}

func (o *Oracle) applyBackoff(sport string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cur := o.backoff[sport]
	if cur == 0 {
		cur = 500 * time.Millisecond
	} else {
		cur *= 2
	}
	if cur > maxBackoff {
		cur = maxBackoff
	}
	o.backoff[sport] = cur
	time.Sleep(cur)
}

func (o *Oracle) clearBackoff(sport string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.backoff, sport)
}
