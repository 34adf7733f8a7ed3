package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_service_requests_total",
		Help: "The total number of requests",
	})

	// ResponsesTotal counts responses by status code.
	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_service_responses_total",
		Help: "The total number of responses by status code",
	}, []string{"status"})

	// RequestDuration observes request handling time.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auth_service_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// MFAEnrollmentsTotal counts enrollment attempts by factor type and outcome.
	MFAEnrollmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_service_mfa_enrollments_total",
		Help: "The total number of MFA enrollment attempts",
	}, []string{"type", "status"})

	// MFAVerificationsTotal counts verification attempts by factor type and outcome.
	MFAVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_service_mfa_verifications_total",
		Help: "The total number of MFA verification attempts",
	}, []string{"type", "status"})

	// PermissionChecksTotal counts permission evaluations by outcome.
	PermissionChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_service_permission_checks_total",
		Help: "The total number of permission checks",
	}, []string{"allowed"})
)
