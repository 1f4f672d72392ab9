package ticker

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// AliasesForSport returns the team-name alias map for a given sport tag,
// used by score adapters to canonicalize a provider's raw team name before
// it becomes GameEvent.AwayTeam/HomeTeam. Sports with no alias table (the
// provider's codes are already canonical) get an empty map.
func AliasesForSport(sport string) map[string]string {
	switch sport {
	case "soccer":
		return SoccerAliases
	default:
		return map[string]string{}
	}
}

// Normalize lowercases, strips diacritics, collapses whitespace, then
// resolves through the given alias map.
func Normalize(s string, aliases map[string]string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = collapseWhitespace(s)
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// NormalizeCode upcases and strips everything but letters, for team-code
// matching (spec.md §4.4: "normalizes both to an uppercase letter-only
// form").
func NormalizeCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
