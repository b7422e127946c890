// Package main provides the entry point for the video thumbnail server.
//
// The server extracts a single frame from a local or remote video, scales it
// to fit a bounding box, and returns it as JPEG, PNG or lossless WebP, either
// in the response body or written to a file.
//
// # Application Lifecycle
//
//  1. Memory: sets GOMEMLIMIT from MEMORY_LIMIT when running in a container
//  2. Configuration: reads environment variables (and CONFIG_FILE if set)
//  3. Component initialization:
//     - libvips for WebP encoding
//     - ffmpeg decoder backend and thumbnail generator
//     - Worker pool bounding concurrent extractions
//     - Memory monitor gating new work under pressure
//     - Metrics collector for pool occupancy
//  4. HTTP server setup: routes, logging and metrics middleware
//  5. Graceful shutdown on SIGINT/SIGTERM
//
// # HTTP Server
//
// The main server (default port 8080) serves:
//
//   - POST /api/thumbnail/{mode}: mode is "data" or "file"
//   - GET /health, /healthz, /livez, /readyz
//   - GET /version
//
// The metrics server (default port 9090, optional) serves /metrics.
//
// # Environment Variables
//
//   - PORT: main HTTP server port (default: 8080)
//   - METRICS_PORT: metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - CACHE_DIR: output directory for thumbnails of remote videos
//   - OUTPUT_ROOT: confine file-mode output to this directory (default: unset)
//   - FFMPEG_PATH, FFPROBE_PATH: tool binaries (default: from PATH)
//   - SCALED_EXTRACTION: let ffmpeg scale while decoding (default: true)
//   - MAX_WORKERS: concurrent extractions (default: derived from CPU count)
//   - REQUEST_TIMEOUT: per-request deadline (default: 60s)
//   - LOG_LEVEL: logging level (debug/info/warn/error)
//   - LOG_HEALTH_CHECKS: include probe requests in the access log
//   - MEMORY_LIMIT, MEMORY_RATIO: container memory budget for GOMEMLIMIT
//   - CONFIG_FILE: optional YAML or JSON file with the same keys
//
// # Graceful Shutdown
//
//  1. Mark the instance not ready
//  2. Stop accepting HTTP requests (30s timeout)
//  3. Release requests held by the memory monitor
//  4. Drain the worker pool
//  5. Stop the metrics collector and metrics server
//  6. Shut down libvips
//
// # Runtime Requirements
//
// ffmpeg and ffprobe must be installed. libvips is needed for WebP output
// and requires CGO.
package main
