package ipc

import (
	"github.com/thoreinstein/docsearch/internal/match"
)

// Operations understood by the server.
const (
	OpOpen    = "open"
	OpQuery   = "query"
	OpResults = "results"
	OpReset   = "reset"
	OpClose   = "close"
	OpStats   = "stats"
	OpHealth  = "health"
)

// Request is one client message.
type Request struct {
	ID      string `msgpack:"id"`
	Op      string `msgpack:"op"`
	Session string `msgpack:"session,omitempty"`
	Query   string `msgpack:"q,omitempty"`
	Limit   int    `msgpack:"limit,omitempty"`
}

// Result is one ranked match as sent to clients.
type Result struct {
	Label   string       `msgpack:"l"`
	Locator string       `msgpack:"u,omitempty"`
	Class   string       `msgpack:"c"`
	Spans   []match.Span `msgpack:"h"`
}

// Stats describes the server state.
type Stats struct {
	Entries  int   `msgpack:"entries"`
	Sessions int   `msgpack:"sessions"`
	Reloads  int64 `msgpack:"reloads"`
	Requests int64 `msgpack:"requests"`
}

// Response answers exactly one Request.
type Response struct {
	ID      string   `msgpack:"id"`
	OK      bool     `msgpack:"ok"`
	Session string   `msgpack:"session,omitempty"`
	Query   string   `msgpack:"q,omitempty"`
	State   string   `msgpack:"state,omitempty"`
	Results []Result `msgpack:"results,omitempty"`
	Count   int      `msgpack:"count"`
	Total   int      `msgpack:"total,omitempty"`
	TimeUS  int64    `msgpack:"t_us"`
	Error   string   `msgpack:"error,omitempty"`
	Stats   *Stats   `msgpack:"stats,omitempty"`
}

func toResults(ms []match.Match) []Result {
	if len(ms) == 0 {
		return nil
	}
	out := make([]Result, len(ms))
	for i, m := range ms {
		out[i] = Result{
			Label:   m.Entry.Label,
			Locator: m.Entry.Locator,
			Class:   m.Class.String(),
			Spans:   m.Spans,
		}
	}
	return out
}
