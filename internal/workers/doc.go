/*
Package workers sizes and runs the pool that thumbnail requests execute on.

# Sizing

When running in containers the number of usable CPUs may be limited by cgroup
constraints. Go 1.19+ sets GOMAXPROCS from those limits, while
runtime.NumCPU() still reports the host's CPU count. Count and ForMixed use
GOMAXPROCS so worker caps follow the container:

	// 1.5 workers per available CPU, at most 12
	limit := workers.ForMixed(12)

	// 3 workers per CPU, no maximum
	limit := workers.Count(3.0, 0)

The THUMBNAIL_WORKERS environment variable overrides the calculation:

	env:
	- name: THUMBNAIL_WORKERS
	  value: "4"

# Pool

Pool is elastic: every task gets its own goroutine, and goroutines exit when
their task returns, so an idle pool holds nothing. A positive limit bounds
concurrency only; tasks over the limit queue on their goroutine instead of
blocking the submitter.

	pool := workers.NewPool(workers.ForMixed(0))
	defer pool.Shutdown()

	if err := pool.Go(func() { handle(req) }); err != nil {
		// pool is shutting down
	}

Shutdown refuses new tasks and waits for scheduled ones to complete.

# Thread Safety

All functions and Pool methods are safe for concurrent use.
*/
package workers
