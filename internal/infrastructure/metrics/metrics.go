package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Draft write outcomes, with the optimistic-lock conflicts broken out
	DraftWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "draft_writes_total",
			Help:      "Draft write attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "uploads_total",
			Help:      "Total media uploads",
		},
		[]string{"kind", "status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"kind"},
	)

	// Transcode dispatch outcomes per tier
	TranscodeDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "transcode_dispatch_total",
			Help:      "Transcode dispatch attempts by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// Transcode job duration
	TranscodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "transcode_duration_seconds",
			Help:      "End-to-end transcode job duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Finalize outcomes
	FinalizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charterhub",
			Subsystem: "charter_api",
			Name:      "finalize_total",
			Help:      "Draft finalize attempts by outcome",
		},
		[]string{"outcome"},
	)
)
