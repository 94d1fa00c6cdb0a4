// Package metrics exposes engine metrics in Prometheus format.
//
// Metrics is registered on its own registry so tests and multiple instances
// never collide on the global default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeynepvrl/HKUygulama/internal/ingest"
)

const namespace = "hkenergy"

// Outcome label values.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeCompleted = "completed"
	outcomeRejected  = "rejected"
)

// Metrics implements ingest.Observer and records facility gauges.
//
// Thread Safety: all methods are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
	batchTables   *prometheus.GaugeVec

	tableFetches  *prometheus.CounterVec
	tableDuration prometheus.Histogram
	measurements  *prometheus.GaugeVec

	activePower *prometheus.GaugeVec
	violations  *prometheus.GaugeVec
}

// New creates Metrics registered on a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batch scan requests by outcome (completed or rejected).",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of completed batch scans.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		batchTables: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_batch_tables",
			Help:      "Tables in the most recent batch by outcome.",
		}, []string{"outcome"}),
		tableFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_fetches_total",
			Help:      "Table fetches by table and outcome.",
		}, []string{"table", "outcome"}),
		tableDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_fetch_duration_seconds",
			Help:      "Wall time of a single table fetch (both families).",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		measurements: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_measurements",
			Help:      "Rows returned for a table by the most recent successful fetch.",
		}, []string{"table"}),
		activePower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rtu_active_power",
			Help:      "Newest RTU active power reading per facility table.",
		}, []string{"table"}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "limit_violations",
			Help:      "RTU series above the facility limit in the most recent scan.",
		}, []string{"table"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.batches, m.batchDuration, m.batchTables,
		m.tableFetches, m.tableDuration, m.measurements,
		m.activePower, m.violations,
	)
	return m
}

// ObserveTable records one table fetch.
func (m *Metrics) ObserveTable(res ingest.TableResult, elapsed time.Duration) {
	m.tableDuration.Observe(elapsed.Seconds())
	if !res.Success {
		m.tableFetches.WithLabelValues(res.TableName, outcomeFailure).Inc()
		return
	}
	m.tableFetches.WithLabelValues(res.TableName, outcomeSuccess).Inc()
	m.measurements.WithLabelValues(res.TableName).Set(float64(res.TotalMeasurements))
}

// ObserveBatch records a completed batch.
func (m *Metrics) ObserveBatch(res ingest.BatchResult) {
	m.batches.WithLabelValues(outcomeCompleted).Inc()
	m.batchDuration.Observe(float64(res.DurationMS) / 1000)
	m.batchTables.WithLabelValues(outcomeSuccess).Set(float64(len(res.Results)))
	m.batchTables.WithLabelValues(outcomeFailure).Set(float64(len(res.Errors)))
}

// ObserveRejected records a batch refused because another was running.
func (m *Metrics) ObserveRejected() {
	m.batches.WithLabelValues(outcomeRejected).Inc()
}

// SetActivePower records the newest RTU active power of a table.
func (m *Metrics) SetActivePower(table string, value float64) {
	m.activePower.WithLabelValues(table).Set(value)
}

// SetViolations records the number of limit violations of a table.
func (m *Metrics) SetViolations(table string, n int) {
	m.violations.WithLabelValues(table).Set(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
