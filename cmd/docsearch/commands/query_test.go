package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/docsearch/internal/errors"
)

func exitCode(err error) int {
	return errors.ExitCode(err)
}

func TestRunQuery_Tabular(t *testing.T) {
	useDefaults(t)
	index := writeIndex(t)

	var buf bytes.Buffer
	require.NoError(t, runQueryWithWriter(t.Context(), &buf, index, "util", 0))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "CLASS")
	assert.Contains(t, lines[0], "LABEL")
	assert.True(t, strings.HasSuffix(lines[1], "mgui.util"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "mgui.io.util"), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "mgui.interfaces.graphs.util"), lines[3])
	assert.Contains(t, lines[1], "segment-prefix")
}

func TestRunQuery_Truncated(t *testing.T) {
	useDefaults(t)
	index := writeIndex(t)

	var buf bytes.Buffer
	require.NoError(t, runQueryWithWriter(t.Context(), &buf, index, "util", 2))
	assert.Contains(t, buf.String(), "Showing 2 of 3 matches.")
}

func TestRunQuery_NoMatches(t *testing.T) {
	useDefaults(t)
	index := writeIndex(t)

	tests := []struct {
		name  string
		query string
	}{
		{"empty query", ""},
		{"whitespace query", "   "},
		{"nothing matches", "zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runQueryWithWriter(t.Context(), &buf, index, tt.query, 0))
			assert.Equal(t, "No matches.\n", buf.String())
		})
	}
}

func TestRunQuery_JSON(t *testing.T) {
	useDefaults(t)
	index := writeIndex(t)

	orig := queryJSON
	queryJSON = true
	defer func() { queryJSON = orig }()

	var buf bytes.Buffer
	require.NoError(t, runQueryWithWriter(t.Context(), &buf, index, "ALL", 0))

	var got []jsonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "All Packages", got[0].Label)
	assert.Equal(t, "allpackages-index.html", got[0].Locator)
	assert.Equal(t, "prefix", got[0].Class)
	require.Len(t, got[0].Spans, 1)
	assert.Equal(t, 0, got[0].Spans[0].Start)
	assert.Equal(t, 3, got[0].Spans[0].End)
}

func TestRunQuery_MissingIndex(t *testing.T) {
	useDefaults(t)

	var buf bytes.Buffer
	err := runQueryWithWriter(t.Context(), &buf, "/nonexistent/index.js", "util", 0)
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, exitCode(err))
}
