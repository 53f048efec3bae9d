// Package rank orders matches by relevance with fully deterministic
// tie-breaking.
package rank

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

type keyed struct {
	m      match.Match
	runes  int
	folded string
}

// Rank returns a new slice holding matches ordered by:
//
//   - match class, Exact first
//   - label length in runes, shorter first
//   - match start offset, earlier first
//   - case-insensitive label
//   - label in byte order
//   - catalog index
//
// Rank never truncates and does not modify its input.
func Rank(matches []match.Match) []match.Match {
	keys := make([]keyed, len(matches))
	for i, m := range matches {
		keys[i] = keyOf(m)
	}

	slices.SortStableFunc(keys, compare)

	out := make([]match.Match, len(keys))
	for i, k := range keys {
		out[i] = k.m
	}
	return out
}

// Less reports whether a ranks strictly before b.
func Less(a, b match.Match) bool {
	return compare(keyOf(a), keyOf(b)) < 0
}

func keyOf(m match.Match) keyed {
	return keyed{
		m:      m,
		runes:  utf8.RuneCountInString(m.Entry.Label),
		folded: normalize.Fold(strings.TrimSpace(m.Entry.Label)),
	}
}

func compare(a, b keyed) int {
	if c := cmp.Compare(a.m.Class, b.m.Class); c != 0 {
		return c
	}
	if c := cmp.Compare(a.runes, b.runes); c != 0 {
		return c
	}
	if c := cmp.Compare(a.m.Start, b.m.Start); c != 0 {
		return c
	}
	if c := strings.Compare(a.folded, b.folded); c != 0 {
		return c
	}
	if c := strings.Compare(a.m.Entry.Label, b.m.Entry.Label); c != 0 {
		return c
	}
	return cmp.Compare(a.m.Entry.Index, b.m.Entry.Index)
}
