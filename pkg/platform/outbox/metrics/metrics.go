// Package metrics exposes outbox relay and retention metrics. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages for PublishFailures.
const (
	StageFetch   = "fetch"
	StagePublish = "publish"
	StageMark    = "mark"
)

type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures *prometheus.CounterVec
	// Deferred counts entries held back because an earlier event for the
	// same record failed in the same batch.
	Deferred        prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	CleanupRuns     *prometheus.CounterVec
	CleanupDeleted  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PendingDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "credledger_outbox_pending",
			Help: "Ledger events committed but not yet relayed",
		}),
		PublishedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "credledger_outbox_published_total",
			Help: "Ledger events relayed to the event stream",
		}),
		PublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credledger_outbox_failures_total",
			Help: "Outbox relay failures by stage",
		}, []string{"stage"}),
		Deferred: f.NewCounter(prometheus.CounterOpts{
			Name: "credledger_outbox_deferred_total",
			Help: "Events deferred to keep per-record order after a failure",
		}),
		PublishDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credledger_outbox_publish_duration_seconds",
			Help:    "Broker acknowledgement latency per event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credledger_outbox_batch_size",
			Help:    "Entries fetched per non-empty poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		CleanupRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credledger_outbox_cleanup_runs_total",
			Help: "Outbox retention sweeps by result",
		}, []string{"result"}),
		CleanupDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "credledger_outbox_cleanup_deleted_total",
			Help: "Processed outbox entries removed by retention sweeps",
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) {
	if m != nil {
		m.PendingDepth.Set(float64(count))
	}
}

func (m *Metrics) ObservePublished(seconds float64) {
	if m != nil {
		m.PublishedTotal.Inc()
		m.PublishDuration.Observe(seconds)
	}
}

func (m *Metrics) IncFailure(stage string) {
	if m != nil {
		m.PublishFailures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncDeferred() {
	if m != nil {
		m.Deferred.Inc()
	}
}

func (m *Metrics) ObserveBatchSize(size int) {
	if m != nil {
		m.BatchSize.Observe(float64(size))
	}
}

func (m *Metrics) ObserveCleanup(deleted int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CleanupRuns.WithLabelValues("error").Inc()
		return
	}
	m.CleanupRuns.WithLabelValues("success").Inc()
	m.CleanupDeleted.Add(float64(deleted))
}
