// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read through viper by [LoadConfig]. Environment variables
// take precedence over an optional YAML or JSON file named by CONFIG_FILE,
// which uses the same keys in lower case (for example max_workers).
//
//   - CACHE_DIR: Output directory for remote sources without a destination
//     (default: <os temp>/video-thumbnail)
//   - OUTPUT_ROOT: When set, file-mode thumbnails may only be written inside
//     this directory or the cache directory (default: unrestricted)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - FFMPEG_PATH, FFPROBE_PATH: Tool locations (default: looked up in PATH)
//   - SCALED_EXTRACTION: Let ffmpeg scale while extracting when both
//     dimensions are given (default: true)
//   - MAX_WORKERS: Concurrent extraction cap; 0 sizes from CPUs
//   - REQUEST_TIMEOUT: Per-request deadline as Go duration (default: 60s)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - THUMBNAIL_WORKERS: Override for CPU-based worker sizing
//
// [LoadConfig] also creates the cache directory and probes ffmpeg and
// ffprobe; a missing tool is logged, and readiness reports it, but startup
// continues.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogWorkerPool]: Worker pool sizing
//   - [LogHTTPRoutes]: Registered HTTP routes
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
