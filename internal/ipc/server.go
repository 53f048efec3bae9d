package ipc

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/metrics"
	"github.com/thoreinstein/docsearch/internal/session"
)

// Option configures a Server.
type Option func(*Server)

// WithLimit sets the default result limit of new sessions and one-shot
// queries. 0 means unlimited.
func WithLimit(n int) Option {
	return func(s *Server) {
		s.limit = max(n, 0)
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records request and query metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Server dispatches requests to search sessions.
type Server struct {
	engine  atomic.Pointer[session.Engine]
	limit   int
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*session.Session

	reloads  atomic.Int64
	requests atomic.Int64
}

// NewServer returns a Server answering queries from engine.
func NewServer(engine *session.Engine, opts ...Option) *Server {
	s := &Server{
		logger:   logging.NewDiscard(),
		sessions: make(map[string]*session.Session),
	}
	s.engine.Store(engine)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the engine new evaluations run against.
func (s *Server) Engine() *session.Engine {
	return s.engine.Load()
}

// Swap replaces the engine. In-flight evaluations finish against the old one.
func (s *Server) Swap(engine *session.Engine) {
	s.engine.Store(engine)
	s.reloads.Add(1)
	s.logger.Info("catalog swapped", "entries", engine.Size())
}

// Serve reads requests from r and writes responses to w until r is
// exhausted or ctx ends. A malformed message ends the stream with an error.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)
	defer s.closeAll()

	s.logger.Debug("ipc server started", "entries", s.Engine().Size())
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("ipc input closed")
				return nil
			}
			return errors.Wrap(err, "decoding request")
		}

		resp := s.Handle(ctx, req)
		if err := enc.Encode(&resp); err != nil {
			return errors.Wrap(err, "encoding response")
		}
		if err := bw.Flush(); err != nil {
			return errors.Wrap(err, "writing response")
		}
	}
}

// Handle answers one request.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	s.requests.Add(1)

	resp, err := s.dispatch(ctx, req)
	resp.ID = req.ID
	resp.OK = err == nil
	if err != nil {
		resp.Error = err.Error()
		s.logger.Debug("request failed", "id", req.ID, "op", req.Op, "error", err)
	}
	resp.TimeUS = time.Since(start).Microseconds()

	if s.metrics != nil {
		s.metrics.ObserveRequest(req.Op, resp.OK)
	}
	s.logger.Log(ctx, logging.LevelTrace, "handled request", "id", req.ID, "op", req.Op, "ok", resp.OK, "t_us", resp.TimeUS)
	return resp
}

func (s *Server) dispatch(ctx context.Context, req Request) (Response, error) {
	switch req.Op {
	case OpOpen:
		return s.open(req), nil
	case OpQuery:
		return s.query(ctx, req)
	case OpResults:
		return s.withSession(req, func(sess *session.Session) Response {
			return sessionResponse(req.Session, sess.Current(), sess.State())
		})
	case OpReset:
		return s.withSession(req, func(sess *session.Session) Response {
			sess.Reset()
			return Response{Session: req.Session, State: sess.State().String()}
		})
	case OpClose:
		return s.close(req)
	case OpStats:
		stats := s.Stats()
		return Response{Stats: &stats}, nil
	case OpHealth:
		return Response{}, nil
	case "":
		return Response{}, errors.New("missing op")
	default:
		return Response{}, errors.Newf("unknown op %q", req.Op)
	}
}

func (s *Server) open(req Request) Response {
	limit := s.limit
	if req.Limit > 0 {
		limit = req.Limit
	}

	id := uuid.NewString()
	sess := session.New(s.Engine(), session.WithLimit(limit), session.WithLogger(s.logger.With("session", id)))

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}
	s.logger.Debug("session opened", "session", id, "limit", limit)
	return Response{Session: id, State: sess.State().String()}
}

func (s *Server) query(ctx context.Context, req Request) (Response, error) {
	engine := s.Engine()
	start := time.Now()

	if req.Session == "" {
		matches, err := engine.Evaluate(ctx, req.Query)
		if err != nil {
			return Response{}, err
		}
		s.observeQuery(start, len(matches))

		limit := s.limit
		if req.Limit > 0 {
			limit = req.Limit
		}
		total := len(matches)
		if limit > 0 && len(matches) > limit {
			matches = matches[:limit]
		}
		return Response{
			Query:   req.Query,
			Results: toResults(matches),
			Count:   len(matches),
			Total:   total,
		}, nil
	}

	sess, err := s.lookup(req.Session)
	if err != nil {
		return Response{}, err
	}
	if sess.Engine() != engine {
		sess.Rebind(engine)
	}

	res, err := sess.SetQueryContext(ctx, req.Query)
	if err != nil {
		return Response{}, err
	}
	s.observeQuery(start, res.Total)
	return sessionResponse(req.Session, res, sess.State()), nil
}

func (s *Server) observeQuery(start time.Time, total int) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(time.Since(start), total)
	}
}

func (s *Server) close(req Request) (Response, error) {
	s.mu.Lock()
	_, ok := s.sessions[req.Session]
	delete(s.sessions, req.Session)
	s.mu.Unlock()

	if !ok {
		return Response{}, errors.Wrapf(errors.ErrUnknownSession, "session %q", req.Session)
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Dec()
	}
	s.logger.Debug("session closed", "session", req.Session)
	return Response{Session: req.Session}, nil
}

func (s *Server) withSession(req Request, fn func(*session.Session) Response) (Response, error) {
	sess, err := s.lookup(req.Session)
	if err != nil {
		return Response{}, err
	}
	return fn(sess), nil
}

func (s *Server) lookup(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownSession, "session %q", id)
	}
	return sess, nil
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.Sub(float64(len(s.sessions)))
	}
	clear(s.sessions)
}

// Stats reports the current server state.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()

	return Stats{
		Entries:  s.Engine().Size(),
		Sessions: n,
		Reloads:  s.reloads.Load(),
		Requests: s.requests.Load(),
	}
}

func sessionResponse(id string, res session.Results, state session.State) Response {
	return Response{
		Session: id,
		Query:   res.Query,
		State:   state.String(),
		Results: toResults(res.Matches),
		Count:   len(res.Matches),
		Total:   res.Total,
	}
}
