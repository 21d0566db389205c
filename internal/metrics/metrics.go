package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carrental"

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Count of booking lifecycle operations by action and resulting status.",
		},
		[]string{"action", "status"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Count of create/approve attempts rejected by the overlap check.",
		},
		[]string{"action"},
	)

	auditFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Count of audit entries that could not be written.",
		},
	)

	lateReturns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "late_active_bookings",
			Help:      "Active bookings past their end date at the last check.",
		},
	)

	availabilityChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "car_availability_changes_total",
			Help:      "Count of available_now flips made by the availability sync job.",
		},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Count of scheduled job runs by job and result.",
		},
		[]string{"job", "result"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransitions, bookingConflicts, auditFailures, lateReturns,
			availabilityChanges, jobRuns, httpRequests)
	})
}

func IncBookingTransition(action, status string) {
	bookingTransitions.WithLabelValues(action, status).Inc()
}

func IncBookingConflict(action string) {
	bookingConflicts.WithLabelValues(action).Inc()
}

func IncAuditFailure() {
	auditFailures.Inc()
}

func SetLateReturns(n int) {
	lateReturns.Set(float64(n))
}

func AddAvailabilityChanges(n int) {
	availabilityChanges.Add(float64(n))
}

func IncJobRun(job, result string) {
	jobRuns.WithLabelValues(job, result).Inc()
}

func ObserveHTTPRequest(route, code string, seconds float64) {
	httpRequests.WithLabelValues(route, code).Observe(seconds)
}
