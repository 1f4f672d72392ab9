package ticker

import (
	"strconv"
	"strings"
)

// dateCodeLen is the fixed width of the date code prefix within the second
// dash-delimited segment (spec.md §4.4: "an 8-character date code").
const dateCodeLen = 8

// ParsedTicker is the raw decomposition of an alt-total ticker before
// away/home team splitting, which requires the fuzzy resolver and so
// happens one layer up in resolve.go.
type ParsedTicker struct {
	Ticker     string
	Series     string
	DateCode   string
	TeamRun    string // concatenated away+home team-code run, still unsplit
	Threshold  int
}

// ParseTicker decomposes a ticker string following the grammar
// SERIES-DATECODE+AWAY+HOME-THRESHOLD: a series prefix, a dash, an
// 8-character date code immediately followed by the concatenated
// away-then-home team code run, a dash, and a trailing integer threshold.
// Returns ok=false for any ticker that doesn't match the grammar (not an
// error — callers skip non-matching tickers, spec.md §7).
func ParseTicker(t string, seriesPrefix string) (ParsedTicker, bool) {
	if seriesPrefix == "" {
		return ParsedTicker{}, false
	}
	if !strings.HasPrefix(t, seriesPrefix+"-") {
		return ParsedTicker{}, false
	}

	rest := t[len(seriesPrefix)+1:]
	parts := strings.Split(rest, "-")
	if len(parts) != 2 {
		return ParsedTicker{}, false
	}

	dateAndTeams, thresholdStr := parts[0], parts[1]
	if len(dateAndTeams) <= dateCodeLen {
		return ParsedTicker{}, false
	}

	threshold, err := strconv.Atoi(thresholdStr)
	if err != nil {
		return ParsedTicker{}, false
	}

	return ParsedTicker{
		Ticker:    t,
		Series:    seriesPrefix,
		DateCode:  dateAndTeams[:dateCodeLen],
		TeamRun:   dateAndTeams[dateCodeLen:],
		Threshold: threshold,
	}, true
}
