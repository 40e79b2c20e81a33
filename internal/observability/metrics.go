package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors for the lending engines. All
// methods are nil-safe so tests can run with a nil *Metrics.
type Metrics struct {
	OpsApplied  *prometheus.CounterVec
	OpsRejected *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec
	Transitions *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors. Call once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		OpsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_operations_applied_total",
			Help: "Engine operations that committed",
		}, []string{"operation"}),

		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_operations_rejected_total",
			Help: "Engine operations rejected (validation, state, conflict)",
		}, []string{"operation", "reason"}),

		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lending_operation_duration_seconds",
			Help:    "Wall time of one engine operation including its transaction",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_loan_status_transitions_total",
			Help: "Loan status transitions recorded",
		}, []string{"from", "to"}),
	}
}

func (m *Metrics) Applied(op string) {
	if m == nil {
		return
	}
	m.OpsApplied.WithLabelValues(op).Inc()
}

func (m *Metrics) Rejected(op, reason string) {
	if m == nil {
		return
	}
	m.OpsRejected.WithLabelValues(op, reason).Inc()
}

func (m *Metrics) Observe(op string, start time.Time) {
	if m == nil {
		return
	}
	m.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}
