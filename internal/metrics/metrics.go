package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunrisestay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sunrisestay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunrisestay_backend_requests_total",
			Help: "Total number of calls to the booking backend",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sunrisestay_backend_request_duration_seconds",
			Help:    "Booking backend call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunrisestay_booking_transitions_total",
			Help: "Booking session operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ContactSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunrisestay_contact_submissions_total",
			Help: "Contact form submissions by outcome",
		},
		[]string{"outcome"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunrisestay_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunrisestay_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunrisestay_active_sessions",
			Help: "Number of visitor sessions held in memory",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBackendRequest(method, endpoint, outcome string, duration float64) {
	BackendRequestsTotal.WithLabelValues(method, endpoint, outcome).Inc()
	BackendRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

func RecordBookingTransition(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	BookingTransitionsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordContactSubmission(outcome string) {
	ContactSubmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
