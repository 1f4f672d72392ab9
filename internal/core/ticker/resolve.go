package ticker

import "strings"

// vowels used by the consonant-skeleton match tier. The leading letter is
// always kept even if it's a vowel (spec.md §4.4: "drop vowels except
// leading vowel").
const vowels = "AEIOU"

// MatchTier names which rule resolved a team-code pair, for logging/tests.
type MatchTier string

const (
	TierExact      MatchTier = "exact"
	TierPrefix     MatchTier = "prefix"
	TierSkeleton   MatchTier = "skeleton"
	TierCompound   MatchTier = "compound"
	TierUPrefix    MatchTier = "u_prefix"
	TierNone       MatchTier = ""
)

// ResolveTeamCode reports whether exchange code a and provider code b refer
// to the same team, trying each tier in order and returning the first that
// matches. Both inputs are normalized (uppercase, letters-only) internally,
// so callers may pass raw codes.
func ResolveTeamCode(a, b string) (MatchTier, bool) {
	na, nb := NormalizeCode(a), NormalizeCode(b)
	if na == "" || nb == "" {
		return TierNone, false
	}

	if na == nb {
		return TierExact, true
	}
	if isPrefixMatch(na, nb) {
		return TierPrefix, true
	}
	if skeleton(na) == skeleton(nb) && skeleton(na) != "" {
		return TierSkeleton, true
	}
	if compoundSubsetMatch(na, nb) {
		return TierCompound, true
	}
	if uPrefixMatch(na, nb) {
		return TierUPrefix, true
	}
	return TierNone, false
}

// isPrefixMatch reports whether one code is a prefix of the other, with a
// minimum shared length of 3 (spec.md §4.4).
func isPrefixMatch(a, b string) bool {
	const minLen = 3
	if len(a) < minLen || len(b) < minLen {
		return false
	}
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	return strings.HasPrefix(longer, shorter)
}

// skeleton drops every vowel except a leading one.
func skeleton(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if i == 0 || !strings.ContainsRune(vowels, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// compoundSubsetMatch splits both codes on likely compound-name boundaries
// (a run of capitals is already atomic after NormalizeCode, so this splits
// on the provider convention of gluing multiple team-name words together —
// approximated here by checking whether the shorter code's letters are a
// contiguous subsequence "run" found inside the longer one, which catches
// codes like "NYR" vs "NYRANGERS" reduced to "NYR"/"NYRANGERS" -> subset).
func compoundSubsetMatch(a, b string) bool {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if len(shorter) < 2 {
		return false
	}
	return strings.Contains(longer, shorter)
}

// uPrefixMatch maps institutional U-prefixed codes (e.g. reserve/youth
// squads reported by some providers as "UXXX") to their bare form.
func uPrefixMatch(a, b string) bool {
	strip := func(s string) string {
		if strings.HasPrefix(s, "U") && len(s) > 1 {
			return s[1:]
		}
		return s
	}
	sa, sb := strip(a), strip(b)
	return sa == sb && (sa != a || sb != b)
}

// longestCommonPrefixLen breaks ties between multiple candidate matches,
// per spec.md §4.4 ("ties broken by longest common prefix").
func longestCommonPrefixLen(a, b string) int {
	na, nb := NormalizeCode(a), NormalizeCode(b)
	n := 0
	for n < len(na) && n < len(nb) && na[n] == nb[n] {
		n++
	}
	return n
}
