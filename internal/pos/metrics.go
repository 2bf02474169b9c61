package pos

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeCompleted = "completed"
	outcomeReplayed  = "replayed"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Metrics counts checkout outcomes and their latency.
type Metrics struct {
	Checkouts *prometheus.CounterVec
	LatencyMS prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coop",
		Subsystem: "pos",
		Name:      "checkouts_total",
		Help:      "Checkouts by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coop",
		Subsystem: "pos",
		Name:      "checkout_duration_ms",
		Help:      "Checkout latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	reg.MustRegister(checkouts, latency)
	return &Metrics{Checkouts: checkouts, LatencyMS: latency}
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
	m.LatencyMS.Observe(float64(elapsed.Microseconds()) / 1000)
}
