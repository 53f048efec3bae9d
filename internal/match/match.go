package match

import (
	"strings"
	"unicode/utf8"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

// DefaultMinSubsequenceLength is the shortest query, in runes, for which
// subsequence matching is attempted.
const DefaultMinSubsequenceLength = 2

// Class is the policy that qualified a match. Lower classes rank higher.
type Class int

// Match classes in priority order.
const (
	Exact Class = iota
	Prefix
	SegmentPrefix
	Substring
	Subsequence
)

var classNames = [...]string{
	Exact:         "exact",
	Prefix:        "prefix",
	SegmentPrefix: "segment-prefix",
	Substring:     "substring",
	Subsequence:   "subsequence",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Span is a half-open byte range [Start, End) of an original label.
type Span struct {
	Start int `json:"start" msgpack:"s"`
	End   int `json:"end" msgpack:"e"`
}

// Match is one entry judged relevant to a query. It is never modified after
// it is produced.
type Match struct {
	Entry catalog.Entry
	Class Class

	// Start is the byte offset in the original label where the match begins.
	Start int

	// Spans are the matched regions of the original label, sorted and
	// non-adjacent.
	Spans []Span
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMinSubsequenceLength sets the shortest query length, in runes, that
// may produce a Subsequence match. Values below 2 are raised to 2.
func WithMinSubsequenceLength(n int) Option {
	return func(m *Matcher) {
		m.minSubsequence = max(n, DefaultMinSubsequenceLength)
	}
}

// Matcher applies the matching policies. The zero value is not usable; call
// New.
type Matcher struct {
	minSubsequence int
}

// New returns a Matcher configured by opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{minSubsequence: DefaultMinSubsequenceLength}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match matches q against entry, whose label normalizes to ef. It reports
// false when no policy is satisfied.
func (m *Matcher) Match(q normalize.Form, entry catalog.Entry, ef normalize.Form) (Match, bool) {
	query, label := q.Text, ef.Text
	if query == "" || len(query) > len(label) {
		return Match{}, false
	}

	if label == query {
		return contiguous(entry, ef, Exact, 0, len(query)), true
	}
	if strings.HasPrefix(label, query) {
		return contiguous(entry, ef, Prefix, 0, len(query)), true
	}
	for _, seg := range ef.Segments {
		if seg.Start > 0 && strings.HasPrefix(label[seg.Start:], query) {
			return contiguous(entry, ef, SegmentPrefix, seg.Start, seg.Start+len(query)), true
		}
	}
	if i := strings.Index(label, query); i >= 0 {
		return contiguous(entry, ef, Substring, i, i+len(query)), true
	}

	if utf8.RuneCountInString(query) < m.minSubsequence {
		return Match{}, false
	}
	spans, ok := subsequence(query, label)
	if !ok {
		return Match{}, false
	}
	return build(entry, ef, Subsequence, spans), true
}

func contiguous(entry catalog.Entry, ef normalize.Form, class Class, start, end int) Match {
	return build(entry, ef, class, []Span{{Start: start, End: end}})
}

// build converts spans over the normalized label into merged spans over
// the original label.
func build(entry catalog.Entry, ef normalize.Form, class Class, spans []Span) Match {
	out := make([]Span, 0, len(spans))
	for _, sp := range spans {
		start, end := ef.Original(sp.Start, sp.End)
		if n := len(out); n > 0 && out[n-1].End >= start {
			out[n-1].End = max(out[n-1].End, end)
			continue
		}
		out = append(out, Span{Start: start, End: end})
	}

	return Match{
		Entry: entry,
		Class: class,
		Start: out[0].Start,
		Spans: out,
	}
}

// subsequence places each rune of query at its leftmost possible position
// in label after the previous one. Consecutive placements are merged.
func subsequence(query, label string) ([]Span, bool) {
	var spans []Span
	pos := 0
	for _, r := range query {
		i := strings.IndexRune(label[pos:], r)
		if i < 0 {
			return nil, false
		}
		start := pos + i
		_, size := utf8.DecodeRuneInString(label[start:])
		end := start + size
		if n := len(spans); n > 0 && spans[n-1].End == start {
			spans[n-1].End = end
		} else {
			spans = append(spans, Span{Start: start, End: end})
		}
		pos = end
	}
	return spans, true
}
