package idempotency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeStored     = "stored"
	OutcomeReplayed   = "replayed"
	OutcomeInFlight   = "in_flight"
	OutcomeStoreError = "store_error"
)

type Metrics struct {
	Requests *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "employeeapp_idempotent_requests_total",
			Help: "Requests carrying an Idempotency-Key, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}
