// Package observability defines the Prometheus metric set for the engine's
// persistence and submission paths.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the coordinators and the fill session report to.
type Metrics struct {
	AutosaveTotal      *prometheus.CounterVec
	DraftWritesTotal   prometheus.Counter
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	StockClampsTotal   prometheus.Counter
}

// New creates the metric set and registers it on the given registerer.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AutosaveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "autosave_total",
			Help:      "Editor autosave attempts by result (ok, error, noop).",
		}, []string{"result"}),
		DraftWritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "draft_writes_total",
			Help:      "Draft snapshots written to storage.",
		}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "submissions_total",
			Help:      "Submission attempts by result (ok, error).",
		}, []string{"result"}),
		SubmissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lattice",
			Name:      "submission_duration_seconds",
			Help:      "Wall time of submission calls including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		StockClampsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "stock_clamps_total",
			Help:      "Quantity selections clamped down after an inventory refresh.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AutosaveTotal,
			m.DraftWritesTotal,
			m.SubmissionsTotal,
			m.SubmissionDuration,
			m.StockClampsTotal,
		)
	}
	return m
}

// NewNop creates an unregistered metric set, safe to report into from tests.
func NewNop() *Metrics {
	return New(nil)
}
