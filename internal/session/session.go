package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

// State is the state of a Session.
type State int

const (
	// Idle means the query is empty and there are no results.
	Idle State = iota

	// Filtered means a non-empty query has been evaluated.
	Filtered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Filtered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Results is one published result set.
type Results struct {
	// Query is the raw query the results were computed for.
	Query string

	// Matches are the ranked matches, truncated to the session limit.
	Matches []match.Match

	// Total is the number of matches before truncation.
	Total int

	// Generation identifies the call that produced the results. It grows
	// with every SetQuery, SetQueryAsync and Reset call.
	Generation uint64
}

func (r Results) clone() Results {
	r.Matches = slices.Clone(r.Matches)
	return r
}

// Option configures a Session.
type Option func(*Session)

// WithLimit caps the number of published matches. 0 means unlimited.
func WithLimit(n int) Option {
	return func(s *Session) {
		s.limit = max(n, 0)
	}
}

// WithPublisher registers fn to receive every published result set. fn is
// called with the session lock held and must not call back into the Session.
func WithPublisher(fn func(Results)) Option {
	return func(s *Session) {
		s.publish = fn
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session holds the live query and published results of one consumer. It
// is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	engine  *Engine
	limit   int
	publish func(Results)
	logger  *slog.Logger

	query   string
	state   State
	results Results

	gen    uint64
	cancel context.CancelFunc
}

// New returns an Idle session evaluating against engine.
func New(engine *Engine, opts ...Option) *Session {
	s := &Session{
		engine: engine,
		logger: logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery replaces the query, evaluates it synchronously and publishes the
// results unless a later call has superseded this one. It returns the
// results computed for text.
func (s *Session) SetQuery(text string) []match.Match {
	// Evaluate only fails when its context ends.
	res, _ := s.SetQueryContext(context.Background(), text)
	return res.Matches
}

// SetQueryContext is SetQuery with a context. If ctx ends before the
// evaluation completes, nothing is published and ctx's error is returned.
func (s *Session) SetQueryContext(ctx context.Context, text string) (Results, error) {
	gen, engine := s.begin(nil)
	res, _, err := s.run(ctx, engine, gen, text)
	return res, err
}

// SetQueryAsync starts evaluating text in a new goroutine and returns a
// channel that receives the published results. The channel is closed
// without a value when the evaluation is superseded or ctx ends first.
func (s *Session) SetQueryAsync(ctx context.Context, text string) <-chan Results {
	ctx, cancel := context.WithCancel(ctx)
	gen, engine := s.begin(cancel)

	ch := make(chan Results, 1)
	go func() {
		defer close(ch)
		defer cancel()
		res, published, err := s.run(ctx, engine, gen, text)
		if err != nil || !published {
			return
		}
		ch <- res
	}()
	return ch
}

// begin takes the next generation and cancels any in-flight async
// evaluation, which can no longer publish.
func (s *Session) begin(cancel context.CancelFunc) (uint64, *Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.gen++
	return s.gen, s.engine
}

// run evaluates text and publishes the results if gen is still the latest
// generation. It reports whether the results were published.
func (s *Session) run(ctx context.Context, engine *Engine, gen uint64, text string) (Results, bool, error) {
	matches, err := engine.Evaluate(ctx, text)
	if err != nil {
		s.logger.Debug("evaluation cancelled", "query", text, "generation", gen, "error", err)
		return Results{}, false, err
	}

	res := Results{
		Query:      text,
		Matches:    matches,
		Total:      len(matches),
		Generation: gen,
	}
	if s.limit > 0 && len(res.Matches) > s.limit {
		res.Matches = res.Matches[:s.limit:s.limit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug("discarding superseded results", "query", text, "generation", gen, "latest", s.gen)
		return res, false, nil
	}

	s.query = text
	s.state = Idle
	if !normalize.Normalize(text).Empty() {
		s.state = Filtered
	}
	s.results = res
	s.cancel = nil
	if s.publish != nil {
		s.publish(res.clone())
	}
	return res.clone(), true, nil
}

// CurrentResults returns a copy of the last published matches.
func (s *Session) CurrentResults() []match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results.Matches)
}

// Current returns a copy of the last published result set.
func (s *Session) Current() Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.clone()
}

// Query returns the raw query of the last published results.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns the session to Idle, superseding any in-flight evaluation,
// and publishes an empty result set.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.query = ""
	s.state = Idle
	s.results = Results{Generation: s.gen}
	if s.publish != nil {
		s.publish(s.results)
	}
}

// Engine returns the engine new evaluations run against.
func (s *Session) Engine() *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Rebind switches the session to engine for subsequent evaluations. The
// published results are left untouched.
func (s *Session) Rebind(engine *Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
}
