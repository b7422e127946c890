package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, mode := range []string{"data", "file", "unknown"} {
		for _, outcome := range []string{"success", "no_thumbnail", "exception", "not_implemented"} {
			ThumbnailRequestsTotal.WithLabelValues(mode, outcome)
		}
		ThumbnailRequestDuration.WithLabelValues(mode)
	}

	for _, phase := range []string{"resolve", "extract", "encode", "write"} {
		ThumbnailPhaseDuration.WithLabelValues(phase)
	}

	stages := []string{"requested", "start", "half", "quarter"}
	for _, stage := range stages {
		ThumbnailExtractionAttempts.WithLabelValues(stage, "success")
		ThumbnailExtractionAttempts.WithLabelValues(stage, "failure")
		if stage != "requested" {
			ThumbnailFallbackSuccess.WithLabelValues(stage)
		}
	}

	for _, format := range []string{"jpeg", "png", "webp"} {
		ThumbnailEncodedBytes.WithLabelValues(format)
	}

	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		FFmpegInvocationDuration.WithLabelValues(tool)
	}

	for _, op := range []string{"stat", "open", "write"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
