package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcomes.
const (
	OutcomeDelivered   = "delivered"
	OutcomeFailed      = "failed"
	OutcomeQueueFull   = "dropped_queue_full"
	OutcomeCircuitOpen = "dropped_circuit_open"
	OutcomeClosed      = "dropped_closed"
)

// Metrics holds Prometheus metrics for notification delivery.
type Metrics struct {
	Events       *prometheus.CounterVec
	Duration     prometheus.Histogram
	QueueDepth   prometheus.Gauge
	CircuitState prometheus.Gauge
}

// NewMetrics registers the notification metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "employeeapp_notifications_total",
			Help: "Notification events by action and outcome",
		}, []string{"action", "outcome"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "employeeapp_notification_delivery_seconds",
			Help:    "Duration of notification delivery attempts",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "employeeapp_notification_queue_depth",
			Help: "Events waiting for a delivery worker",
		}),
		CircuitState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "employeeapp_notification_circuit_open",
			Help: "Delivery circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) observe(action, outcome string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(action, outcome).Inc()
}
