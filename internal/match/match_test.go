package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

func matchLabel(m *Matcher, query, label string) (Match, bool) {
	entry := catalog.Entry{Label: label}
	return m.Match(normalize.Normalize(query), entry, normalize.Normalize(label))
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		label     string
		wantOK    bool
		wantClass Class
		wantSpans []Span
	}{
		{"exact", "mgui.util", "mgui.util", true, Exact, []Span{{0, 9}}},
		{"exact ignores case", "MGUI.Util", "mgui.util", true, Exact, []Span{{0, 9}}},
		{"prefix", "mgui.int", "mgui.interfaces", true, Prefix, []Span{{0, 8}}},
		{"segment prefix", "graphs", "mgui.interfaces.graphs", true, SegmentPrefix, []Span{{16, 22}}},
		{"segment prefix on whitespace", "pack", "All Packages", true, SegmentPrefix, []Span{{4, 8}}},
		{"segment prefix with dotted query", "io.util", "mgui.io.util", true, SegmentPrefix, []Span{{5, 12}}},
		{"first matching segment wins", "util", "mgui.util.util", true, SegmentPrefix, []Span{{5, 9}}},
		{"substring", "face", "mgui.interfaces", true, Substring, []Span{{10, 14}}},
		{"single rune substring", "q", "aqb", true, Substring, []Span{{1, 2}}},
		{"subsequence", "mguiiu", "mgui.interfaces.util", true, Subsequence, []Span{{0, 4}, {5, 6}, {16, 17}}},
		{"subsequence merges adjacent", "mgu", "mxgu", true, Subsequence, []Span{{0, 1}, {2, 4}}},
		{"no match", "xyz", "mgui.util", false, 0, nil},
		{"out of order", "ium", "mgui", false, 0, nil},
		{"query longer than label", "mgui.util.more", "mgui.util", false, 0, nil},
		{"empty query", "", "mgui", false, 0, nil},
		{"whitespace query", "  \t", "mgui", false, 0, nil},
	}

	m := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchLabel(m, tt.query, tt.label)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantClass, got.Class)
			assert.Equal(t, tt.wantSpans, got.Spans)
			assert.Equal(t, tt.wantSpans[0].Start, got.Start)
			assert.Equal(t, tt.label, got.Entry.Label)
		})
	}
}

func TestMatcher_SpansUseOriginalOffsets(t *testing.T) {
	label := "  MGui.Util"
	got, ok := matchLabel(New(), "util", label)
	require.True(t, ok)
	assert.Equal(t, SegmentPrefix, got.Class)
	require.Len(t, got.Spans, 1)
	assert.Equal(t, "Util", label[got.Spans[0].Start:got.Spans[0].End])

	label = "Ärger.Öl"
	got, ok = matchLabel(New(), "öl", label)
	require.True(t, ok)
	assert.Equal(t, "Öl", label[got.Spans[0].Start:got.Spans[0].End])
}

func TestMatcher_UtilExample(t *testing.T) {
	m := New()
	for _, label := range []string{"mgui.util", "mgui.interfaces.util", "mgui.io.util"} {
		got, ok := matchLabel(m, "util", label)
		require.True(t, ok, label)
		assert.Equal(t, SegmentPrefix, got.Class, label)
	}
}

func TestWithMinSubsequenceLength(t *testing.T) {
	t.Run("raises threshold", func(t *testing.T) {
		m := New(WithMinSubsequenceLength(3))
		_, ok := matchLabel(m, "ac", "abc")
		assert.False(t, ok)

		got, ok := matchLabel(m, "acd", "abcd")
		require.True(t, ok)
		assert.Equal(t, Subsequence, got.Class)
	})

	t.Run("never below two", func(t *testing.T) {
		m := New(WithMinSubsequenceLength(0))
		assert.Equal(t, DefaultMinSubsequenceLength, m.minSubsequence)

		got, ok := matchLabel(m, "ac", "abc")
		require.True(t, ok)
		assert.Equal(t, Subsequence, got.Class)
	})
}

func TestClass_Order(t *testing.T) {
	order := []Class{Exact, Prefix, SegmentPrefix, Substring, Subsequence}
	for i := 1; i < len(order); i++ {
		assert.True(t, order[i-1] < order[i], "%s should rank above %s", order[i-1], order[i])
	}
}

func TestClass_String(t *testing.T) {
	tests := []struct {
		c    Class
		want string
	}{
		{Exact, "exact"},
		{Prefix, "prefix"},
		{SegmentPrefix, "segment-prefix"},
		{Substring, "substring"},
		{Subsequence, "subsequence"},
		{Class(42), "unknown"},
		{Class(-1), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.String())
	}
}
