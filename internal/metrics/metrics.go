// Package metrics defines the Prometheus collectors for the search server
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "docsearch"

// Metrics holds all Prometheus collectors for the server.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	QueryLatency       prometheus.Histogram
	QueryResultsCount  prometheus.Histogram
	SessionsActive     prometheus.Gauge
	CatalogEntries     prometheus.Gauge
	CatalogReloadTotal *prometheus.CounterVec
	MalformedRecords   prometheus.Gauge
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total IPC requests by operation and status.",
			},
			[]string{"op", "status"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "query_latency_seconds",
				Help:      "Query evaluation latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "query_results_count",
				Help:      "Number of matches per query before truncation.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "sessions_active",
				Help:      "Number of open search sessions.",
			},
		),
		CatalogEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "catalog_entries",
				Help:      "Number of entries in the loaded catalog.",
			},
		),
		CatalogReloadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "catalog_reloads_total",
				Help:      "Total catalog reloads by status.",
			},
			[]string{"status"},
		),
		MalformedRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "catalog_malformed_records",
				Help:      "Number of records skipped while loading the current catalog.",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.SessionsActive,
		m.CatalogEntries,
		m.CatalogReloadTotal,
		m.MalformedRecords,
	)

	return m
}

// UnknownOp is the op label recorded for requests with an unrecognized op.
const UnknownOp = "unknown"

// requestOps lists the protocol ops that get their own label value.
var requestOps = map[string]struct{}{
	"open":    {},
	"query":   {},
	"results": {},
	"reset":   {},
	"close":   {},
	"stats":   {},
	"health":  {},
}

// ObserveRequest records one handled request. Ops outside the protocol are
// counted under UnknownOp.
func (m *Metrics) ObserveRequest(op string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	if _, known := requestOps[op]; !known {
		op = UnknownOp
	}
	m.RequestsTotal.WithLabelValues(op, status).Inc()
}

// ObserveQuery records the latency and match count of one evaluation.
func (m *Metrics) ObserveQuery(d time.Duration, total int) {
	m.QueryLatency.Observe(d.Seconds())
	m.QueryResultsCount.Observe(float64(total))
}

// ObserveCatalog records the size of a newly loaded catalog.
func (m *Metrics) ObserveCatalog(entries, malformed int) {
	m.CatalogEntries.Set(float64(entries))
	m.MalformedRecords.Set(float64(malformed))
}

// ObserveReload records the outcome of a catalog reload.
func (m *Metrics) ObserveReload(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CatalogReloadTotal.WithLabelValues(status).Inc()
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
