package ticker

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/scorearb/arbiter/internal/telemetry"
)

// ThresholdEntry is one (ticker, line) pair in a game's threshold map.
type ThresholdEntry struct {
	Ticker string
	Line   int
}

// ThresholdMap is the ordered, ascending-by-line list of alt-total
// contracts for one game. Immutable once built (spec.md §3).
type ThresholdMap struct {
	GameID  string
	Entries []ThresholdEntry
}

// QualifyingEntries returns the subset of entries whose line is strictly less than
// observedTotal — the contracts whose YES outcome is now guaranteed.
func (tm ThresholdMap) QualifyingEntries(observedTotal int) []ThresholdEntry {
	var out []ThresholdEntry
	for _, e := range tm.Entries {
		if e.Line < observedTotal {
			out = append(out, e)
		}
	}
	return out
}

// ThresholdMapBuilder builds and memoizes ThresholdMaps per game_id,
// fetching markets for the game's configured series and splitting each
// matching ticker's team run against the game's known team codes.
// Concurrent builds for the same game_id coalesce onto a single in-flight
// fetch via singleflight, exactly as the teacher's Resolver.ensureFresh
// coalesces concurrent market refreshes.
type ThresholdMapBuilder struct {
	fetcher MarketFetcher
	sf      singleflight.Group

	mu      sync.RWMutex
	built   map[string]ThresholdMap // game_id -> map
}

func NewThresholdMapBuilder(fetcher MarketFetcher) *ThresholdMapBuilder {
	return &ThresholdMapBuilder{
		fetcher: fetcher,
		built:   make(map[string]ThresholdMap),
	}
}

// Get returns the memoized map for gameID if already built.
func (b *ThresholdMapBuilder) Get(gameID string) (ThresholdMap, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	tm, ok := b.built[gameID]
	return tm, ok
}

// Build fetches markets for seriesPrefix, parses tickers, resolves the
// away/home split against the game's known codes, and memoizes the
// resulting map under gameID. Idempotent: a second call for the same
// gameID returns the memoized result without an additional REST call.
func (b *ThresholdMapBuilder) Build(ctx context.Context, gameID, seriesPrefix, awayCode, homeCode string) (ThresholdMap, error) {
	if tm, ok := b.Get(gameID); ok {
		return tm, nil
	}

	v, err, _ := b.sf.Do(gameID, func() (any, error) {
		if tm, ok := b.Get(gameID); ok {
			return tm, nil
		}

		markets, err := b.fetcher.GetMarkets(ctx, seriesPrefix)
		if err != nil {
			return ThresholdMap{}, err
		}

		tm := ThresholdMap{GameID: gameID}
		for _, m := range markets {
			parsed, ok := ParseTicker(m.Ticker, seriesPrefix)
			if !ok {
				continue
			}
			if !splitMatchesGame(parsed.TeamRun, awayCode, homeCode) {
				continue
			}
			tm.Entries = append(tm.Entries, ThresholdEntry{Ticker: parsed.Ticker, Line: parsed.Threshold})
		}

		sort.Slice(tm.Entries, func(i, j int) bool {
			return tm.Entries[i].Line < tm.Entries[j].Line
		})

		b.mu.Lock()
		b.built[gameID] = tm
		b.mu.Unlock()

		telemetry.Infof("ticker: built threshold map for game=%s series=%s entries=%d", gameID, seriesPrefix, len(tm.Entries))
		return tm, nil
	})
	if err != nil {
		return ThresholdMap{}, err
	}
	return v.(ThresholdMap), nil
}

// splitMatchesGame tries every way of splitting run into an away-then-home
// pair (spec.md §4.4: "the split is chosen such that both halves produce a
// match") and reports whether any split resolves both halves against the
// game's known codes.
func splitMatchesGame(run, awayCode, homeCode string) bool {
	best := findBestSplit(run, awayCode, homeCode)
	return best.found
}

type splitCandidate struct {
	found       bool
	splitAt     int
	awayTier    MatchTier
	homeTier    MatchTier
	commonPrefixTotal int
}

// tierRank orders tiers best-to-worst for candidate comparison.
func tierRank(t MatchTier) int {
	switch t {
	case TierExact:
		return 0
	case TierPrefix:
		return 1
	case TierSkeleton:
		return 2
	case TierCompound:
		return 3
	case TierUPrefix:
		return 4
	default:
		return 99
	}
}

// findBestSplit scans every split point of the concatenated team-code run
// and keeps the candidate with the best combined tier, breaking ties by
// longest total common prefix (spec.md §4.4).
func findBestSplit(run, awayCode, homeCode string) splitCandidate {
	var best splitCandidate
	best.awayTier, best.homeTier = TierNone, TierNone

	for i := 1; i < len(run); i++ {
		awayPart, homePart := run[:i], run[i:]

		awayTier, awayOK := ResolveTeamCode(awayPart, awayCode)
		homeTier, homeOK := ResolveTeamCode(homePart, homeCode)
		if !awayOK || !homeOK {
			continue
		}

		rank := tierRank(awayTier) + tierRank(homeTier)
		prefixTotal := longestCommonPrefixLen(awayPart, awayCode) + longestCommonPrefixLen(homePart, homeCode)

		if !best.found ||
			rank < tierRank(best.awayTier)+tierRank(best.homeTier) ||
			(rank == tierRank(best.awayTier)+tierRank(best.homeTier) && prefixTotal > best.commonPrefixTotal) {
			best = splitCandidate{
				found:             true,
				splitAt:           i,
				awayTier:          awayTier,
				homeTier:          homeTier,
				commonPrefixTotal: prefixTotal,
			}
		}
	}

	return best
}
