package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

func loadIndex(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, errs, err := catalog.LoadFile(filepath.Join("..", "catalog", "testdata", "package-search-index.js"))
	require.NoError(t, err)
	require.Empty(t, errs)
	return cat
}

func newCatalog(t *testing.T, labels ...string) *catalog.Catalog {
	t.Helper()
	cat, errs := catalog.Strings(labels...)
	require.Empty(t, errs)
	return cat
}

func matchLabels(ms []match.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Entry.Label
	}
	return out
}

func TestEngine_Evaluate_UtilExample(t *testing.T) {
	e := NewEngine(newCatalog(t, "mgui.interfaces.util", "mgui.util", "mgui.io.util"))

	got, err := e.Evaluate(context.Background(), "util")
	require.NoError(t, err)
	assert.Equal(t, []string{"mgui.util", "mgui.io.util", "mgui.interfaces.util"}, matchLabels(got))
	for _, m := range got {
		assert.Equal(t, match.SegmentPrefix, m.Class)
	}
}

func TestEngine_Evaluate_EmptyQuery(t *testing.T) {
	e := NewEngine(loadIndex(t))
	for _, q := range []string{"", " ", "\t\n"} {
		got, err := e.Evaluate(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, got, "query %q", q)
	}
}

func TestEngine_Evaluate_Subsequence(t *testing.T) {
	e := NewEngine(newCatalog(t, "mgui.interfaces.util", "mgui.io"))

	got, err := e.Evaluate(context.Background(), "mguiiu")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mgui.interfaces.util", got[0].Entry.Label)
	assert.Equal(t, match.Subsequence, got[0].Class)
}

func TestEngine_Evaluate_ClassOrdering(t *testing.T) {
	e := NewEngine(newCatalog(t,
		"xgxrxaxpxhxs",
		"mgui.graphs.layouts",
		"graphsview",
		"mgui.subgraphs",
		"graphs",
	))

	got, err := e.Evaluate(context.Background(), "graphs")
	require.NoError(t, err)
	assert.Equal(t, []string{"graphs", "graphsview", "mgui.graphs.layouts", "mgui.subgraphs", "xgxrxaxpxhxs"}, matchLabels(got))

	want := []match.Class{match.Exact, match.Prefix, match.SegmentPrefix, match.Substring, match.Subsequence}
	for i, m := range got {
		assert.Equal(t, want[i], m.Class, m.Entry.Label)
	}
}

func TestEngine_Evaluate_NoFalsePositives(t *testing.T) {
	cat := loadIndex(t)
	e := NewEngine(cat)

	for _, q := range []string{"util", "mgui.io", "graphs", "mguiiu", "shp", "ni", "pkg", "All"} {
		got, err := e.Evaluate(context.Background(), q)
		require.NoError(t, err)

		nq := normalize.Normalize(q).Text
		for _, m := range got {
			assert.True(t, satisfies(nq, normalize.Normalize(m.Entry.Label)), "%q does not match %q", q, m.Entry.Label)
		}
	}
}

// satisfies checks the matching policies independently of the matcher.
func satisfies(query string, label normalize.Form) bool {
	if strings.Contains(label.Text, query) {
		return true
	}
	pos := 0
	for _, r := range query {
		i := strings.IndexRune(label.Text[pos:], r)
		if i < 0 {
			return false
		}
		pos += i + len(string(r))
	}
	return len([]rune(query)) >= 2
}

func TestEngine_Evaluate_PrefixNarrowing(t *testing.T) {
	e := NewEngine(loadIndex(t))

	q2 := "mgui.interfaces.gr"
	long, err := e.Evaluate(context.Background(), q2)
	require.NoError(t, err)
	require.NotEmpty(t, long)

	for i := 1; i < len(q2); i++ {
		q := q2[:i]
		short, err := e.Evaluate(context.Background(), q)
		require.NoError(t, err)
		matched := make(map[int]match.Class, len(short))
		for _, m := range short {
			matched[m.Entry.Index] = m.Class
		}

		for _, m := range long {
			if m.Class > match.Prefix {
				continue
			}
			class, ok := matched[m.Entry.Index]
			assert.True(t, ok && class <= match.Prefix, "%q should prefix-match %q", q, m.Entry.Label)
		}
	}
}

func TestEngine_Evaluate_ParallelMatchesSequential(t *testing.T) {
	labels := make([]string, 0, 5000)
	for i := range 5000 {
		labels = append(labels, fmt.Sprintf("pkg%d.sub%d.util%d", i%37, i%11, i))
	}
	cat := newCatalog(t, labels...)

	seq := NewEngine(cat, WithParallelThreshold(0))
	par := NewEngine(cat, WithParallelThreshold(100), WithWorkers(8), WithEngineLogger(logging.ForTest(t)))

	for _, q := range []string{"util1", "pkg3", "sub", "p3u9", "42"} {
		want, err := seq.Evaluate(context.Background(), q)
		require.NoError(t, err)
		got, err := par.Evaluate(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, want, got, "query %q", q)
	}
}

func TestEngine_Evaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cat := newCatalog(t, "a.b", "a.c")
	for _, e := range []*Engine{
		NewEngine(cat),
		NewEngine(cat, WithParallelThreshold(1), WithWorkers(2)),
	} {
		_, err := e.Evaluate(ctx, "a")
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestEngine_WithMatcher(t *testing.T) {
	cat := newCatalog(t, "abc")
	e := NewEngine(cat, WithMatcher(match.New(match.WithMinSubsequenceLength(3))))

	got, err := e.Evaluate(context.Background(), "ac")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEngine_Accessors(t *testing.T) {
	cat := newCatalog(t, "a", "b")
	e := NewEngine(cat)
	assert.Same(t, cat, e.Catalog())
	assert.Equal(t, 2, e.Size())
}
