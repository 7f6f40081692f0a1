package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the client registry.
type Metrics struct {
	ClientsCreated  prometheus.Counter
	ResolveDuration prometheus.Histogram
	WriteDuration   *prometheus.HistogramVec
}

// New creates a Metrics instance with all client registry metrics registered.
func New() *Metrics {
	return &Metrics{
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escana_clients_created_total",
			Help: "Total number of client records created",
		}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "escana_client_resolve_duration_seconds",
			Help:    "Duration of client lookups by national ID (scan critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		WriteDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "escana_client_write_duration_seconds",
			Help:    "Duration of client create/update/upsert operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// IncrementClientsCreated records a new client record.
func (m *Metrics) IncrementClientsCreated() {
	if m != nil {
		m.ClientsCreated.Inc()
	}
}

// ObserveResolve records the duration of a lookup. Call with time.Now() from
// the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	if m != nil {
		m.ResolveDuration.Observe(time.Since(start).Seconds())
	}
}

// ObserveWrite records the duration of a mutating operation.
func (m *Metrics) ObserveWrite(op string, start time.Time) {
	if m != nil {
		m.WriteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
