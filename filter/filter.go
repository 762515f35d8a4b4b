package filter

import (
	"strings"
	"time"

	"github.com/scipunch/jobscout/fetcher"
)

// Criteria is the effective filter for one run: a recency window plus
// inclusion and exclusion keyword lists. Keyword lists are expected to be
// lowercased already; an empty inclusion list matches everything and an
// empty exclusion list excludes nothing.
type Criteria struct {
	Hours    int
	Keywords []string
	Exclude  []string
}

// Match reports whether the item survives all three predicates at the given
// instant: it is within the lookback window, matches an inclusion keyword,
// and matches no exclusion keyword.
func (c Criteria) Match(item fetcher.Item, now time.Time) bool {
	text := SearchText(item)
	if !WithinWindow(item.Published, c.Hours, now) {
		return false
	}
	if !MatchesKeywords(text, c.Keywords) {
		return false
	}
	if MatchesExclusions(text, c.Exclude) {
		return false
	}
	return true
}

// SearchText is the haystack keyword predicates run against: the item's
// title, description and content joined with spaces.
func SearchText(item fetcher.Item) string {
	return strings.Join([]string{item.Title, item.Description, item.Content}, " ")
}

// WithinWindow reports whether published falls inside the lookback window
// ending at now. The boundary is inclusive: a timestamp exactly hours old
// still passes. An item without a timestamp never passes, since its recency
// cannot be established.
func WithinWindow(published *time.Time, hours int, now time.Time) bool {
	if published == nil {
		return false
	}
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	return !published.Before(cutoff)
}

// MatchesKeywords reports whether text contains any keyword,
// case-insensitively. An empty keyword list matches vacuously.
func MatchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	t := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// MatchesExclusions reports whether text contains any excluded keyword,
// case-insensitively. An empty exclusion list matches nothing.
func MatchesExclusions(text string, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}
	t := strings.ToLower(text)
	for _, k := range exclude {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}
