package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "procurely"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Public form posts, by form
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_form_submissions_total",
			Help: "Total number of accepted public form submissions",
		},
		[]string{"form"},
	)

	// Admin logins, by result
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_cache_lookups_total",
			Help: "Total number of public query cache lookups",
		},
		[]string{"entity", "result"},
	)
)

// RecordFormSubmission counts an accepted public form post.
func RecordFormSubmission(form string) {
	FormSubmissions.WithLabelValues(form).Inc()
}

// RecordLogin counts a login attempt as "success" or "failure".
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}
