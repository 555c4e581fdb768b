package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	PeopleCreated   prometheus.Counter
	PeopleRejected  *prometheus.CounterVec
	StorageFailures *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PeopleCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_people_created_total",
			Help: "Total number of person records stored",
		}),
		PeopleRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_people_rejected_total",
			Help: "Submissions rejected by validation, by offending field",
		}, []string{"field"}),
		StorageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_storage_failures_total",
			Help: "Datastore operations that failed, by operation",
		}, []string{"op"}),
	}
}

// IncrementPeopleCreated increments the people created counter by 1
func (m *Metrics) IncrementPeopleCreated() {
	m.PeopleCreated.Inc()
}

// IncrementPeopleRejected counts a rejection naming field
func (m *Metrics) IncrementPeopleRejected(field string) {
	m.PeopleRejected.WithLabelValues(field).Inc()
}

// IncrementStorageFailures counts a failed datastore operation
func (m *Metrics) IncrementStorageFailures(op string) {
	m.StorageFailures.WithLabelValues(op).Inc()
}
