package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelier",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotelier",
			Name:      "bookings_created_total",
			Help:      "Successfully created bookings.",
		},
	)

	bookingFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelier",
			Name:      "booking_failures_total",
			Help:      "Booking attempts rejected by business checks.",
		},
		[]string{"reason"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotelier",
			Name:      "booking_conflicts_total",
			Help:      "Bookings that lost the transactional availability re-check.",
		},
	)

	availabilityCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelier",
			Name:      "availability_cache_requests_total",
			Help:      "Availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	exportTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelier",
			Name:      "export_tasks_total",
			Help:      "Export queue tasks by terminal status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingFailures,
			bookingConflicts,
			availabilityCacheHits,
			exportTasks,
		)
	})
}

// IncHTTP increments the counter for an endpoint and status label.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingFailure(reason string) {
	bookingFailures.WithLabelValues(reason).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncCacheOutcome(outcome string) {
	availabilityCacheHits.WithLabelValues(outcome).Inc()
}

func IncExportTask(status string) {
	exportTasks.WithLabelValues(status).Inc()
}
