package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access decision engine.
type Metrics struct {
	// Accept outcomes by status and classification
	AcceptOutcome *prometheus.CounterVec

	// Ban actions by level
	BansApplied *prometheus.CounterVec
	BansLifted  prometheus.Counter

	// Scans rejected before reaching persistence
	ScansRejected prometheus.Counter

	// Operation latencies
	OperationLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all access engine metrics registered.
func New() *Metrics {
	return &Metrics{
		AcceptOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escana_accept_outcomes_total",
			Help: "Total accept outcomes by status and classification",
		}, []string{"status", "classification"}),

		BansApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escana_bans_applied_total",
			Help: "Total bans applied by severity level",
		}, []string{"level"}),

		BansLifted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escana_bans_lifted_total",
			Help: "Total bans lifted",
		}),

		ScansRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escana_scans_rejected_total",
			Help: "Total scans rejected for missing critical data",
		}),

		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "escana_access_operation_duration_seconds",
			Help:    "Duration of access engine operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
	}
}

// IncrementAccept records an accept outcome.
func (m *Metrics) IncrementAccept(status, classification string) {
	if m != nil {
		m.AcceptOutcome.WithLabelValues(status, classification).Inc()
	}
}

// IncrementBanApplied records an applied ban.
func (m *Metrics) IncrementBanApplied(level string) {
	if m != nil {
		m.BansApplied.WithLabelValues(level).Inc()
	}
}

// IncrementBanLifted records a lifted ban.
func (m *Metrics) IncrementBanLifted() {
	if m != nil {
		m.BansLifted.Inc()
	}
}

// IncrementScanRejected records a scan stopped before persistence.
func (m *Metrics) IncrementScanRejected() {
	if m != nil {
		m.ScansRejected.Inc()
	}
}

// ObserveOperation records the duration of an engine operation. Call with
// time.Now() from the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	if m != nil {
		m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
