// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_applications_submitted_total",
			Help: "Total number of applications successfully submitted",
		},
	)

	SubmissionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_failed_total",
			Help: "Total number of failed submission attempts",
		},
		[]string{"error_code"},
	)

	StepValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_step_validation_failures_total",
			Help: "Total number of rejected forward transitions",
		},
		[]string{"step", "error_code"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "intake_submission_duration_seconds",
			Help: "Duration of the terminal submission write in seconds",
		},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_webhook_events_total",
			Help: "Total number of payment webhook events by type",
		},
		[]string{"event_type"},
	)

	DocumentUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_document_uploads_total",
			Help: "Total number of traveler document uploads",
		},
		[]string{"task_key", "status"},
	)
)
