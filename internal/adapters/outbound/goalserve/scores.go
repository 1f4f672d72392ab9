package goalserve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scorearb/arbiter/internal/core/oracle"
	"github.com/scorearb/arbiter/internal/core/ticker"
)

// scoreboardXML mirrors GoalServe's livescore feed shape: a flat list of
// in-progress and completed matches for one sport/competition.
type scoreboardXML struct {
	Matches []matchXML `xml:"category>match"`
}

type matchXML struct {
	ID         string `xml:"id,attr"`
	Status     string `xml:"status,attr"`
	Time       string `xml:"time,attr"`
	FormattedDate string `xml:"formatted_date,attr"`
	LocalTeam  teamXML `xml:"localteam"`
	VisitorTeam teamXML `xml:"visitorteam"`
}

type teamXML struct {
	Name  string `xml:"name,attr"`
	Score string `xml:"totalscore,attr"`
}

// Adapter implements oracle.ScoreAdapter against GoalServe's livescore feed.
type Adapter struct {
	client *Client
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Poll fetches one sport/competition's scoreboard and canonicalizes every
// match into an oracle.CanonicalGameRecord. Team names are resolved through
// ticker.AliasesForSport so downstream matching against exchange team codes
// (ticker.ResolveTeamCode) starts from a canonical form rather than the
// provider's raw spelling.
func (a *Adapter) Poll(ctx context.Context, sport, competitionID string) ([]oracle.CanonicalGameRecord, error) {
	url := a.client.scoresURL(sport, competitionID)

	var feed scoreboardXML
	if err := a.client.fetchXML(ctx, url, &feed); err != nil {
		return nil, fmt.Errorf("fetch scores %s/%s: %w", sport, competitionID, err)
	}

	aliases := ticker.AliasesForSport(sport)

	out := make([]oracle.CanonicalGameRecord, 0, len(feed.Matches))
	for _, m := range feed.Matches {
		homeScore, _ := strconv.Atoi(strings.TrimSpace(m.LocalTeam.Score))
		awayScore, _ := strconv.Atoi(strings.TrimSpace(m.VisitorTeam.Score))

		out = append(out, oracle.CanonicalGameRecord{
			GameID:     m.ID,
			Sport:      sport,
			Status:     strings.ToLower(strings.TrimSpace(m.Status)),
			AwayTeam:   ticker.Normalize(m.VisitorTeam.Name, aliases),
			HomeTeam:   ticker.Normalize(m.LocalTeam.Name, aliases),
			AwayScore:  awayScore,
			HomeScore:  homeScore,
			Period:     strings.TrimSpace(m.Time),
			KickoffUTC: parseKickoff(m.FormattedDate),
		})
	}
	return out, nil
}

// parseKickoff best-efforts GoalServe's date format; a zero time is a valid
// "unknown" result, not an error (Oracle's clock-skew guard treats it as
// never-ahead).
func parseKickoff(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return t
	}
	return time.Time{}
}
