package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/media"
	"video-thumbnail/internal/metrics"
	"video-thumbnail/internal/workers"

	"github.com/google/uuid"
)

// Service produces thumbnails. media.Generator implements it.
type Service interface {
	Data(ctx context.Context, req media.Request) ([]byte, error)
	File(ctx context.Context, req media.Request) (string, error)
}

// Gate holds work back under resource pressure. memory.Monitor implements
// it.
type Gate interface {
	Wait(ctx context.Context) error
	Paused() bool
}

// Dispatcher routes requests by mode onto a worker pool.
type Dispatcher struct {
	service Service
	pool    *workers.Pool
	timeout time.Duration
	gate    Gate
}

// NewDispatcher creates a dispatcher. A zero timeout means requests run
// until their context ends.
func NewDispatcher(service Service, pool *workers.Pool, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		service: service,
		pool:    pool,
		timeout: timeout,
	}
}

// SetGate makes every request wait on g before it runs.
func (d *Dispatcher) SetGate(g Gate) {
	d.gate = g
}

// Throttled reports whether the gate is currently holding work back.
func (d *Dispatcher) Throttled() bool {
	return d.gate != nil && d.gate.Paused()
}

// Submit schedules req and returns a channel that receives exactly one
// Response.
func (d *Dispatcher) Submit(ctx context.Context, req Request) <-chan Response {
	out := make(chan Response, 1)
	id := uuid.NewString()

	if req.Mode != ModeData && req.Mode != ModeFile {
		logging.Debug("[%s] Unsupported mode %q", id, req.Mode)
		out <- d.finish(Response{ID: id, Mode: req.Mode, NotImplemented: true}, time.Now())
		return out
	}

	err := d.pool.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				out <- d.finish(Response{
					ID:   id,
					Mode: req.Mode,
					Err:  &CallError{Code: CodeException, Message: fmt.Sprintf("panic: %v", r)},
				}, time.Now())
			}
		}()
		out <- d.run(ctx, id, req)
	})
	if err != nil {
		out <- d.finish(Response{
			ID:   id,
			Mode: req.Mode,
			Err:  &CallError{Code: CodeException, Message: err.Error()},
		}, time.Now())
	}
	return out
}

// Call runs req and waits for its Response.
func (d *Dispatcher) Call(ctx context.Context, req Request) Response {
	return <-d.Submit(ctx, req)
}

func (d *Dispatcher) run(ctx context.Context, id string, req Request) Response {
	start := time.Now()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	mreq := req.MediaRequest()
	resp := Response{ID: id, Mode: req.Mode, Format: mreq.Format}
	logging.Debug("[%s] %s thumbnail: video=%s format=%s max=%dx%d time=%dms",
		id, req.Mode, req.Video, mreq.Format, req.MaxW, req.MaxH, req.TimeMs)

	var err error
	if d.gate != nil {
		if err = d.gate.Wait(ctx); err != nil {
			resp.Err = &CallError{Code: CodeException, Message: fmt.Sprintf("waiting for memory: %v", err)}
			return d.finish(resp, start)
		}
	}

	switch req.Mode {
	case ModeData:
		resp.Data, err = d.service.Data(ctx, mreq)
	case ModeFile:
		resp.Path, err = d.service.File(ctx, mreq)
	}

	if err != nil {
		resp.Data, resp.Path = nil, ""
		if errors.Is(err, media.ErrUnsupportedOperation) {
			resp.NotImplemented = true
		} else {
			resp.Err = classify(err)
		}
	}
	return d.finish(resp, start)
}

func (d *Dispatcher) finish(resp Response, start time.Time) Response {
	mode := resp.Mode
	if mode != ModeData && mode != ModeFile {
		mode = "unknown"
	}
	metrics.ThumbnailRequestsTotal.WithLabelValues(mode, resp.outcome()).Inc()
	metrics.ThumbnailRequestDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	switch {
	case resp.Err != nil && resp.Err.Code == CodeException:
		logging.Warn("[%s] %s thumbnail failed: %s", resp.ID, mode, resp.Err.Message)
	case resp.Err != nil:
		logging.Debug("[%s] %s thumbnail: %s", resp.ID, mode, resp.Err.Message)
	case resp.OK():
		logging.Debug("[%s] %s thumbnail done in %v", resp.ID, mode, time.Since(start))
	}
	return resp
}

// classify maps a pipeline error to a wire error.
func classify(err error) *CallError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CallError{Code: CodeException, Message: err.Error()}
	}
	if errors.Is(err, media.ErrDecodeFailure) {
		return &CallError{Code: CodeNoThumbnail, Message: fmt.Sprintf("no frame could be decoded: %v", err)}
	}
	return &CallError{Code: CodeException, Message: err.Error()}
}
