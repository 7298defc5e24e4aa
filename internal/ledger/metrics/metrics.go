package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds Prometheus collectors for ledger instructions.
type Metrics struct {
	Instructions        *prometheus.CounterVec
	InstructionDuration *prometheus.HistogramVec
	CredentialsIssued   prometheus.Counter
	CredentialsRevoked  prometheus.Counter
	ProgramErrors       *prometheus.CounterVec
	StatusCacheLatency  *prometheus.HistogramVec
	StatusCacheLookups  *prometheus.CounterVec
}

// New registers ledger collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Instructions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credledger_instructions_total",
			Help: "Ledger instructions processed, labeled by instruction and result",
		}, []string{"instruction", "result"}),
		InstructionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credledger_instruction_duration_seconds",
			Help:    "Latency of ledger instructions in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"instruction"}),
		CredentialsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "credledger_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		CredentialsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "credledger_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		ProgramErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credledger_program_errors_total",
			Help: "Instructions rejected with a program error, labeled by error name",
		}, []string{"error"}),
		StatusCacheLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credledger_status_cache_latency_seconds",
			Help:    "Latency of credential status cache operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
		StatusCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credledger_status_cache_lookups_total",
			Help: "Credential status cache lookups, labeled hit or miss",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveInstruction(instruction string, err error, elapsed time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Instructions.WithLabelValues(instruction, result).Inc()
	m.InstructionDuration.WithLabelValues(instruction).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementProgramError(name string) {
	m.ProgramErrors.WithLabelValues(name).Inc()
}

func (m *Metrics) IncrementCredentialsIssued() {
	m.CredentialsIssued.Inc()
}

func (m *Metrics) IncrementCredentialsRevoked() {
	m.CredentialsRevoked.Inc()
}

func (m *Metrics) ObserveCacheOperation(operation string, elapsed time.Duration) {
	m.StatusCacheLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.StatusCacheLookups.WithLabelValues(outcome).Inc()
}
