package session

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/normalize"
	"github.com/thoreinstein/docsearch/internal/rank"
)

// DefaultParallelThreshold is the catalog size above which Evaluate splits
// the scan across workers.
const DefaultParallelThreshold = 4096

// cancelCheckInterval is how many entries are scanned between context checks.
const cancelCheckInterval = 1024

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithParallelThreshold sets the catalog size above which scans run in
// parallel. A value <= 0 disables parallel scanning.
func WithParallelThreshold(n int) EngineOption {
	return func(e *Engine) {
		e.parallelThreshold = n
	}
}

// WithWorkers sets the number of parallel scan workers. Defaults to
// GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMatcher replaces the default Matcher.
func WithMatcher(m *match.Matcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithEngineLogger sets the logger for evaluation traces.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine evaluates queries against an immutable Catalog.
type Engine struct {
	catalog *catalog.Catalog
	entries []catalog.Entry
	forms   []normalize.Form

	matcher           *match.Matcher
	parallelThreshold int
	workers           int
	logger            *slog.Logger
}

// NewEngine builds an Engine for cat, normalizing every label once.
func NewEngine(cat *catalog.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:           cat,
		entries:           cat.All(),
		matcher:           match.New(),
		parallelThreshold: DefaultParallelThreshold,
		workers:           runtime.GOMAXPROCS(0),
		logger:            logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.forms = make([]normalize.Form, len(e.entries))
	for i, entry := range e.entries {
		e.forms[i] = normalize.Normalize(entry.Label)
	}
	return e
}

// Catalog returns the catalog the engine searches.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Size returns the number of entries searched per evaluation.
func (e *Engine) Size() int {
	return len(e.entries)
}

// Evaluate matches query against every entry and returns the ranked
// matches. An empty or whitespace-only query yields no matches. The only
// error is the context's, when ctx ends before the scan completes.
func (e *Engine) Evaluate(ctx context.Context, query string) ([]match.Match, error) {
	q := normalize.Normalize(query)
	if q.Empty() {
		return nil, nil
	}

	start := time.Now()
	var (
		matches []match.Match
		err     error
	)
	if e.parallelThreshold > 0 && len(e.entries) > e.parallelThreshold && e.workers > 1 {
		matches, err = e.scanParallel(ctx, q)
	} else {
		matches, err = e.scan(ctx, q, 0, len(e.entries))
	}
	if err != nil {
		return nil, err
	}

	ranked := rank.Rank(matches)
	e.logger.Log(ctx, logging.LevelTrace, "evaluated query",
		"query", query,
		"entries", len(e.entries),
		"matches", len(ranked),
		"duration", time.Since(start),
	)
	return ranked, nil
}

func (e *Engine) scan(ctx context.Context, q normalize.Form, from, to int) ([]match.Match, error) {
	var out []match.Match
	for i := from; i < to; i++ {
		if (i-from)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if m, ok := e.matcher.Match(q, e.entries[i], e.forms[i]); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// scanParallel splits the entries into contiguous chunks and concatenates
// the per-chunk matches in chunk order, so the result equals scan's.
func (e *Engine) scanParallel(ctx context.Context, q normalize.Form) ([]match.Match, error) {
	n := len(e.entries)
	workers := min(e.workers, n)
	chunk := (n + workers - 1) / workers
	parts := make([][]match.Match, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		from := w * chunk
		to := min(from+chunk, n)
		if from >= to {
			continue
		}
		g.Go(func() error {
			part, err := e.scan(gctx, q, from, to)
			if err != nil {
				return err
			}
			parts[w] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]match.Match, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}
