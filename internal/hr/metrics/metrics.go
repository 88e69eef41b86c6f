package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Salary update outcomes.
const (
	OutcomeCommitted      = "committed"
	OutcomeInvalid        = "invalid"
	OutcomeNotFound       = "not_found"
	OutcomeLedgerRejected = "ledger_rejected"
	OutcomeFailed         = "failed"
)

// Metrics provides observability for the HR module.
type Metrics struct {
	SalaryUpdates        *prometheus.CounterVec
	SalaryUpdateDuration prometheus.Histogram
	EmployeesCreated     prometheus.Counter
	DepartmentsCreated   prometheus.Counter
	DepartmentsDeleted   prometheus.Counter
}

// New registers the HR metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SalaryUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "employeeapp_salary_updates_total",
			Help: "Salary update transactions by outcome",
		}, []string{"outcome"}),
		SalaryUpdateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "employeeapp_salary_update_duration_seconds",
			Help:    "Duration of salary update transactions from begin to commit or rollback",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		EmployeesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "employeeapp_employees_created_total",
			Help: "Total number of employees created",
		}),
		DepartmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "employeeapp_departments_created_total",
			Help: "Total number of departments created",
		}),
		DepartmentsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "employeeapp_departments_deleted_total",
			Help: "Total number of departments deleted",
		}),
	}
}

// ObserveSalaryUpdate records one transaction outcome.
func (m *Metrics) ObserveSalaryUpdate(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.SalaryUpdates.WithLabelValues(outcome).Inc()
	m.SalaryUpdateDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncEmployeesCreated() {
	if m != nil {
		m.EmployeesCreated.Inc()
	}
}

func (m *Metrics) IncDepartmentsCreated() {
	if m != nil {
		m.DepartmentsCreated.Inc()
	}
}

func (m *Metrics) IncDepartmentsDeleted() {
	if m != nil {
		m.DepartmentsDeleted.Inc()
	}
}
