// Package handlers provides the HTTP handlers of the thumbnail service.
//
// It includes handlers for:
//   - Thumbnail extraction (POST /api/thumbnail/{mode})
//   - Health, liveness and readiness probes
//   - Version and build information
//   - Prometheus metrics
package handlers
