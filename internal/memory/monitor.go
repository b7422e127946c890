package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/metrics"
)

// Config holds memory monitor configuration.
type Config struct {
	// LimitBytes overrides the Go memory limit (0 = use GOMEMLIMIT).
	LimitBytes int64

	// Work resumes once usage drops below ResumeRatio of the limit.
	ResumeRatio float64

	// Work is held back once usage reaches PauseRatio of the limit.
	PauseRatio float64

	CheckInterval time.Duration
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		ResumeRatio:   0.7,
		PauseRatio:    0.85,
		CheckInterval: 2 * time.Second,
	}
}

// Monitor samples heap usage and gates new thumbnail work while usage is
// critical.
type Monitor struct {
	config Config
	limit  int64
	sample func() uint64

	mu       sync.Mutex
	current  uint64
	paused   bool
	resumed  chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a monitor. Without a limit the monitor never pauses.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < 1<<62 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Info("Memory monitor: no memory limit configured, backpressure disabled")
	} else {
		logging.Info("Memory monitor: limit %s, pause at %.0f%%", formatBytes(limit), config.PauseRatio*100)
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		sample:   heapAlloc,
		resumed:  make(chan struct{}),
		stopChan: make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop ends sampling and releases any waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) check() {
	alloc := m.sample()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = alloc
	if m.limit <= 0 {
		return
	}

	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case !m.paused && usage >= m.config.PauseRatio:
		logging.Warn("Memory critical (%.1f%% of limit), holding new thumbnail work", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPauseEvents.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.ResumeRatio:
		logging.Info("Memory recovered (%.1f%% of limit), resuming thumbnail work", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resumed)
		m.resumed = make(chan struct{})
	}
}

// Wait blocks while work is held back. It returns ctx.Err() if ctx ends
// first; a stopped monitor never blocks.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resumed := m.resumed
	m.mu.Unlock()

	select {
	case <-resumed:
		return nil
	case <-m.stopChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paused reports whether new work is being held back.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Stats returns the last sampled allocation, the limit, and their ratio.
func (m *Monitor) Stats() (current uint64, limit int64, usage float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 {
		usage = float64(m.current) / float64(m.limit)
	}
	return m.current, m.limit, usage
}
