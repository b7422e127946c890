package metrics

import (
	"time"

	"video-thumbnail/internal/logging"
)

// PoolStatsProvider reports worker pool occupancy.
type PoolStatsProvider interface {
	Active() int
	Pending() int
}

// Collector periodically copies worker pool occupancy into gauges.
type Collector struct {
	provider PoolStatsProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider PoolStatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}

	active := c.provider.Active()
	pending := c.provider.Pending()

	WorkerPoolActive.Set(float64(active))
	WorkerPoolPending.Set(float64(pending))

	logging.Debug("Metrics collected: active=%d, pending=%d", active, pending)
}
