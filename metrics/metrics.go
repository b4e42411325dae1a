// Package metrics exposes Prometheus counters for conversion runs.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "semevents"

// Metrics holds the conversion counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	rows        prometheus.Counter
	groups      *prometheus.CounterVec
	triples     *prometheus.CounterVec
	rowErrors   *prometheus.CounterVec
	unmatched   prometheus.Counter
	droppedRows prometheus.Counter
	runDuration prometheus.Histogram
}

// New creates and registers all counters. Process and Go runtime collectors
// are registered as well when withRuntime is true.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Total number of table rows read",
		}),

		groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Total number of event groups converted, by output mode",
		}, []string{"mode"}),

		triples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_total",
			Help:      "Total number of triples emitted, by output mode",
		}, []string{"mode"}),

		rowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_errors_total",
			Help:      "Total number of non-fatal row errors, by kind",
		}, []string{"kind"}),

		unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmatched_rules_total",
			Help:      "Rows whose change columns matched no predicate rule",
		}),

		droppedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Rows dropped because the grouping column was empty",
		}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a conversion run over one input table",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.rows,
		m.groups,
		m.triples,
		m.rowErrors,
		m.unmatched,
		m.droppedRows,
		m.runDuration,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// AddRows counts rows read from a table.
func (m *Metrics) AddRows(n int) {
	if m != nil {
		m.rows.Add(float64(n))
	}
}

// AddDroppedRows counts rows discarded by grouping.
func (m *Metrics) AddDroppedRows(n int) {
	if m != nil {
		m.droppedRows.Add(float64(n))
	}
}

// ObserveGroup records one converted group and its triple count for a mode.
func (m *Metrics) ObserveGroup(mode string, triples int) {
	if m == nil {
		return
	}
	m.groups.WithLabelValues(mode).Inc()
	m.triples.WithLabelValues(mode).Add(float64(triples))
}

// RowError counts a non-fatal row error of the given kind.
func (m *Metrics) RowError(kind string) {
	if m != nil {
		m.rowErrors.WithLabelValues(kind).Inc()
	}
}

// UnmatchedRule counts a row with change columns but no matching rule.
func (m *Metrics) UnmatchedRule() {
	if m != nil {
		m.unmatched.Inc()
	}
}

// ObserveRun records the duration of a run that started at start.
func (m *Metrics) ObserveRun(start time.Time) {
	if m != nil {
		m.runDuration.Observe(time.Since(start).Seconds())
	}
}
