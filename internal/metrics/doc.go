// Package metrics provides Prometheus instrumentation for the video thumbnail
// service. All metrics are prefixed with "video_thumbnail_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, path, and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: currently processing requests
//
// ## Thumbnail Metrics
//
//   - ThumbnailRequestsTotal: requests by mode (data, file) and outcome
//   - ThumbnailRequestDuration: end-to-end duration by mode
//   - ThumbnailPhaseDuration: resolve, extract, encode and write phases
//   - ThumbnailExtractionAttempts: frame grabs by stage (requested, start,
//     half, quarter) and result
//   - ThumbnailFallbackSuccess: frames that only a fallback timestamp produced
//   - ThumbnailEncodedBytes: output size by format
//   - FFmpegInvocationDuration: ffmpeg and ffprobe process time
//
// ## Worker Pool Metrics
//
//   - WorkerPoolActive, WorkerPoolPending: refreshed by Collector
//
// ## Memory Metrics
//
//   - MemoryUsageRatio: heap allocation over the memory limit
//   - MemoryPaused, MemoryPauseEvents: backpressure state set by the memory
//     monitor
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver:
//   - FilesystemOperationDuration, FilesystemOperationErrors
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemStaleErrors
//
// Call InitializeMetrics at startup so every label combination is exported
// from the first scrape.
package metrics
