package commands

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/paths"
	"github.com/thoreinstein/docsearch/internal/session"
)

// loadCatalog reads the index at path with the configured size limit.
// Skipped records are logged and returned.
func loadCatalog(ctx context.Context, path string) (*catalog.Catalog, []error, error) {
	path, err := paths.ExpandHome(path)
	if err != nil {
		return nil, nil, errors.NewSystemError(err, "Use an absolute index path")
	}

	logger := logging.FromContext(ctx)
	cat, skipped, err := catalog.LoadFile(path,
		catalog.WithMaxSize(cfg.Index.MaxSize),
		catalog.WithLogger(logger),
	)
	if err != nil {
		if errors.Is(err, errors.ErrUnsupportedFormat) {
			return nil, nil, errors.NewUserError(err, "Supported index files: .js, .json, .yaml, .yml, .toml, optionally with .gz or .zst")
		}
		return nil, nil, errors.NewSystemError(err, "Check that the index file exists and is readable")
	}
	return cat, skipped, nil
}

// newEngine builds a search engine over cat using the configured options.
func newEngine(cat *catalog.Catalog, logger *slog.Logger) *session.Engine {
	return session.NewEngine(cat,
		session.WithParallelThreshold(cfg.Search.ParallelThreshold),
		session.WithMatcher(match.New(match.WithMinSubsequenceLength(cfg.Search.MinFuzzyLength))),
		session.WithEngineLogger(logger),
	)
}

// loadEngine loads the index at path and builds an engine over it.
func loadEngine(ctx context.Context, path string) (*session.Engine, error) {
	cat, _, err := loadCatalog(ctx, path)
	if err != nil {
		return nil, err
	}
	return newEngine(cat, logging.FromContext(ctx)), nil
}

// highlighter renders matched spans of a label in color.
type highlighter struct {
	match *color.Color
	dim   *color.Color
	bold  *color.Color
}

func newHighlighter(w io.Writer) *highlighter {
	h := &highlighter{
		match: color.New(color.FgGreen, color.Bold),
		dim:   color.New(color.FgHiBlack),
		bold:  color.New(color.Bold),
	}
	enable := logging.UseColor(w, logging.ColorMode(colorMode))
	for _, c := range []*color.Color{h.match, h.dim, h.bold} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

// label returns label with every span emphasized.
func (h *highlighter) label(label string, spans []match.Span) string {
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.Start < pos || sp.End > len(label) {
			continue
		}
		b.WriteString(label[pos:sp.Start])
		b.WriteString(h.match.Sprint(label[sp.Start:sp.End]))
		pos = sp.End
	}
	b.WriteString(label[pos:])
	return b.String()
}
