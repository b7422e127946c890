package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnail_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnail_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_requests_total",
			Help: "Total number of thumbnail requests by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "success", "no_thumbnail", "exception", "not_implemented"
	)

	ThumbnailRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnail_request_duration_seconds",
			Help:    "End-to-end thumbnail request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	ThumbnailPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnail_phase_duration_seconds",
			Help:    "Duration of each pipeline phase in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"phase"}, // "resolve", "extract", "encode", "write"
	)

	ThumbnailExtractionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_extraction_attempts_total",
			Help: "Frame extraction attempts by stage and result",
		},
		[]string{"stage", "result"}, // stage: "requested", "start", "half", "quarter"
	)

	ThumbnailFallbackSuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_fallback_success_total",
			Help: "Requests whose frame came from a fallback timestamp",
		},
		[]string{"stage"},
	)

	ThumbnailEncodedBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnail_encoded_bytes",
			Help:    "Size of encoded thumbnails in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"format"},
	)

	FFmpegInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnail_ffmpeg_duration_seconds",
			Help:    "Duration of ffmpeg/ffprobe invocations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"}, // "ffmpeg", "ffprobe"
	)
)

// Worker pool metrics
var (
	WorkerPoolActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnail_worker_pool_active",
			Help: "Number of thumbnail requests currently executing",
		},
	)

	WorkerPoolPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnail_worker_pool_pending",
			Help: "Number of thumbnail requests waiting for a worker slot",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnail_memory_usage_ratio",
			Help: "Go heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_thumbnail_memory_paused",
			Help: "Whether new thumbnail work is held back by memory pressure (1 = held)",
		},
	)

	MemoryPauseEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_thumbnail_memory_pause_events_total",
			Help: "Number of times thumbnail work was held back by memory pressure",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_thumbnail_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_filesystem_retry_attempts_total",
			Help: "Total number of NFS retry attempts",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_thumbnail_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_thumbnail_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
