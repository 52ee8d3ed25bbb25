package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "karabook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "karabook",
			Name:      "bookings_created_total",
			Help:      "Bookings created successfully.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "karabook",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because of a time slot conflict.",
		},
	)

	cacheFailovers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "karabook",
			Name:      "cache_failovers_total",
			Help:      "Switches from the redis schedule cache to the in-memory fallback.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingConflicts, cacheFailovers)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a successfully created booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingConflict counts a conflict rejection.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncCacheFailover counts a redis-to-memory cache switch.
func IncCacheFailover() {
	cacheFailovers.Inc()
}
