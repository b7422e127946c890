// Package middleware provides HTTP middleware for the thumbnail service.
//
// It includes:
//   - Structured access logging through internal/logging
//   - Prometheus request metrics labelled by route template
//   - Optional filtering of health check requests from the log
package middleware
