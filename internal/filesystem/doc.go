/*
Package filesystem wraps the few filesystem operations the thumbnail pipeline
performs (stat and open of the source video, write of the output image) with
retry logic for NFS stale file handle errors.

Only ESTALE (errno 116) triggers a retry, with exponential backoff:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

All other errors are returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

	err := filesystem.WriteFileWithRetry(out, data, 0o644, filesystem.DefaultRetryConfig())

Metrics are reported through an Observer installed with SetObserver; the
metrics package provides the Prometheus implementation.
*/
package filesystem
