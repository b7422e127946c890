package workers

import (
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Go after Shutdown has been called.
var ErrPoolClosed = errors.New("worker pool is shut down")

// Count returns the optimal number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with THUMBNAIL_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("THUMBNAIL_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU).
// Thumbnail extraction spends most of its time waiting on ffmpeg and then
// resizes and encodes in-process, so this is the default sizing.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}

// Pool runs tasks on goroutines that are created on demand and exit once
// their task finishes. A positive limit caps how many tasks run at the same
// time; excess tasks wait for a free slot on their own goroutine, so Go never
// blocks the caller.
type Pool struct {
	slots   chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	active  atomic.Int64
	pending atomic.Int64
}

// NewPool creates a pool. A limit of 0 means unbounded.
func NewPool(limit int) *Pool {
	p := &Pool{}
	if limit > 0 {
		p.slots = make(chan struct{}, limit)
	}
	return p
}

// Limit returns the concurrency cap, or 0 when the pool is unbounded.
func (p *Pool) Limit() int {
	return cap(p.slots)
}

// Go schedules task. It returns ErrPoolClosed once Shutdown has started.
func (p *Pool) Go(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.wg.Add(1)
	p.pending.Add(1)
	go func() {
		defer p.wg.Done()

		if p.slots != nil {
			p.slots <- struct{}{}
			defer func() { <-p.slots }()
		}

		p.pending.Add(-1)
		p.active.Add(1)
		defer p.active.Add(-1)

		task()
	}()
	return nil
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Pending returns the number of tasks waiting for a slot.
func (p *Pool) Pending() int {
	return int(p.pending.Load())
}

// Shutdown stops accepting tasks and waits for scheduled ones to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
