// Package metrics registers the prometheus instruments for the audit core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the audit-core prometheus instruments.
type Metrics struct {
	DetectionPasses  prometheus.Counter
	FindingsEmitted  *prometheus.CounterVec
	ImportedRows     prometheus.Counter
	DetectionSeconds prometheus.Histogram
}

// New builds and registers the instruments on a fresh registry, returning
// both so the HTTP layer can expose the registry on /metrics.
func New() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		DetectionPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentaudit_detection_passes_total",
			Help: "Number of completed anomaly detection passes.",
		}),
		FindingsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentaudit_findings_total",
			Help: "Findings emitted by detection passes, by severity.",
		}, []string{"severity"}),
		ImportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentaudit_imported_rows_total",
			Help: "Rows ingested from uploaded documents.",
		}),
		DetectionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentaudit_detection_duration_seconds",
			Help:    "Wall time of a full detection pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(m.DetectionPasses, m.FindingsEmitted, m.ImportedRows, m.DetectionSeconds)
	return m, registry
}
