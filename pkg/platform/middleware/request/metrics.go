package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks per-route HTTP latency and response counts. Routes are chi
// patterns, so label cardinality is bounded by the router.
type Metrics struct {
	Latency   *prometheus.HistogramVec
	Responses *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route", "method"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credledger_http_responses_total",
			Help: "HTTP responses by route and status class",
		}, []string{"route", "method", "class"}),
	}
}

func (m *Metrics) Observe(route, method string, status int, seconds float64) {
	m.Latency.WithLabelValues(route, method).Observe(seconds)
	m.Responses.WithLabelValues(route, method, statusClass(status)).Inc()
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
