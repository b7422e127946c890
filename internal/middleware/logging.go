package middleware

import (
	"net/http"
	"strings"
	"time"

	"video-thumbnail/internal/logging"
)

// responseWriter records the status code and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// LoggingConfig holds configuration for the access log middleware
type LoggingConfig struct {
	SkipPaths       []string
	LogHealthChecks bool
}

// DefaultLoggingConfig skips /metrics and probe endpoints.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths: []string{"/metrics"},
	}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// Logger returns middleware that writes one structured access log entry
// per request.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkip(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			logging.Record(accessFields(r, wrapped, time.Since(start)), "http request")
		})
	}
}

// accessFields collects the access log fields. Every client-controlled value
// goes through sanitizeLogField.
func accessFields(r *http.Request, rw *responseWriter, duration time.Duration) logging.Fields {
	fields := logging.Fields{
		"client_ip":   sanitizeLogField(getClientIP(r)),
		"method":      sanitizeLogField(r.Method),
		"path":        sanitizeLogField(r.URL.Path),
		"status":      rw.statusCode,
		"bytes":       rw.bytesWritten,
		"duration_ms": duration.Milliseconds(),
	}

	optional := map[string]string{
		"query":      r.URL.RawQuery,
		"user_agent": r.Header.Get("User-Agent"),
		"referer":    r.Header.Get("Referer"),
		// Set by the thumbnail handler; joins the entry with dispatcher logs
		"request_id": rw.Header().Get("X-Request-Id"),
	}
	for key, value := range optional {
		if value != "" {
			fields[key] = sanitizeLogField(value)
		}
	}
	return fields
}

// sanitizeLogField drops control characters and ANSI escapes and turns line
// breaks into spaces.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func shouldSkip(path string, config LoggingConfig) bool {
	return skipped(path, config.SkipPaths) || (!config.LogHealthChecks && healthCheckPaths[path])
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return strings.Trim(ip, "[]")
}
