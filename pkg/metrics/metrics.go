package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets covering everything from local handler work to
	// multi-second Gemini round trips.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Inference gateway metrics
	InferenceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_client_operation_duration_seconds",
			Help:    "Text-inference operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	InferenceRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_client_operation_total",
			Help: "Total number of text-inference operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentscout_chat_turns_total",
			Help: "Total number of processed candidate turns",
		},
		[]string{"step", "status"},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentscout_sessions_started_total",
			Help: "Total number of intake sessions started",
		},
	)

	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentscout_otp_issued_total",
			Help: "Total number of verification codes issued",
		},
		[]string{"status"},
	)

	OTPChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentscout_otp_checks_total",
			Help: "Total number of verification code checks",
		},
		[]string{"status"},
	)

	InterviewsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentscout_interviews_started_total",
			Help: "Total number of interviews started",
		},
	)

	InterviewsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentscout_interviews_finished_total",
			Help: "Total number of interviews finished, by decision",
		},
		[]string{"decision"},
	)

	InterviewScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talentscout_interview_score",
			Help:    "Distribution of total interview scores",
			Buckets: []float64{0, 3, 6, 9, 12, 15, 18, 21, 24, 27, 30},
		},
	)

	NotificationSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentscout_notification_sends_total",
			Help: "Total number of notification emails sent",
		},
		[]string{"kind", "status"},
	)

	CandidateArchives = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentscout_candidate_archives_total",
			Help: "Total number of finished candidates persisted",
		},
		[]string{"status"},
	)

	TranscriptUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of transcript storage operations",
		},
		[]string{"operation", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
