// Package memory keeps the thumbnail service inside its container memory
// budget.
//
// [ConfigureLimit] sets GOMEMLIMIT from MEMORY_LIMIT (bytes, usually from
// the Kubernetes Downward API) scaled by MEMORY_RATIO, unless GOMEMLIMIT is
// already set. The default ratio leaves a quarter of the container for
// ffmpeg children and libvips buffers, which the Go runtime cannot see.
//
// A [Monitor] samples heap allocation against the limit. Once usage crosses
// the pause ratio, [Monitor.Wait] holds new thumbnail work until usage falls
// below the resume ratio. The dispatcher calls Wait before each request, and
// readiness reports not ready while paused so load balancers shed traffic.
//
//	memory.ConfigureLimit(os.Getenv)
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
package memory
