package timeline

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher tests items against a search query.
type Matcher struct {
	query         string
	caseSensitive bool
	fold          cases.Caser
}

// NewMatcher returns a matcher for query. Unless caseSensitive is set, matching
// uses Unicode case folding, so "STRASSE" matches "straße".
func NewMatcher(query string, caseSensitive bool) *Matcher {
	m := &Matcher{caseSensitive: caseSensitive, fold: cases.Fold()}
	m.query = m.normalize(strings.TrimSpace(query))
	return m
}

// Empty reports whether the query matches nothing because it is blank.
func (m *Matcher) Empty() bool {
	return m.query == ""
}

// Match reports whether any text field of it contains the query.
func (m *Matcher) Match(it Item) bool {
	if m.Empty() {
		return false
	}
	for _, field := range [...]string{it.Label(), it.CardTitle, it.CardSubtitle, it.Detail} {
		if field != "" && strings.Contains(m.normalize(field), m.query) {
			return true
		}
	}
	return false
}

func (m *Matcher) normalize(s string) string {
	if m.caseSensitive {
		return s
	}
	return m.fold.String(s)
}

// Search returns the indices of items matching query, in order. A blank query
// matches nothing.
func Search(items []Item, query string, caseSensitive bool) []int {
	m := NewMatcher(query, caseSensitive)
	if m.Empty() {
		return nil
	}
	var hits []int
	for i := range items {
		if m.Match(items[i]) {
			hits = append(hits, i)
		}
	}
	return hits
}
