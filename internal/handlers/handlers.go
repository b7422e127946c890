package handlers

import (
	"sync/atomic"
	"time"

	"video-thumbnail/internal/bridge"
	"video-thumbnail/internal/startup"
)

// Handlers serves the thumbnail API and the probe endpoints.
type Handlers struct {
	dispatcher       *bridge.Dispatcher
	ffmpegAvailable  bool
	ffprobeAvailable bool
	startTime        time.Time
	shuttingDown     atomic.Bool
}

func New(dispatcher *bridge.Dispatcher, config *startup.Config) *Handlers {
	return &Handlers{
		dispatcher:       dispatcher,
		ffmpegAvailable:  config.FFmpegAvailable,
		ffprobeAvailable: config.FFprobeAvailable,
		startTime:        time.Now(),
	}
}

// SetShuttingDown makes readiness probes fail so load balancers drain the
// instance before the server stops.
func (h *Handlers) SetShuttingDown() {
	h.shuttingDown.Store(true)
}
