package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/metrics"
)

// Stage names an extraction attempt.
type Stage string

const (
	StageRequested Stage = "requested"
	StageStart     Stage = "start"
	StageHalf      Stage = "half"
	StageQuarter   Stage = "quarter"
)

type attempt struct {
	stage  Stage
	timeMs int64
}

var errEmptyFrame = errors.New("backend returned an empty frame")

// ExtractFrame decodes a frame near timeMs and scales it to the requested
// bounds. If the requested time fails it retries at the start, half and
// quarter of the duration. ErrDecodeFailure is returned when nothing decodes;
// a cancelled or expired ctx is returned as its own error instead.
func ExtractFrame(ctx context.Context, h Handle, timeMs int64, maxW, maxH int) (*Frame, error) {
	start := time.Now()
	defer func() {
		metrics.ThumbnailPhaseDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	}()

	extractW, extractH := extractionSize(maxW, maxH, h.SupportsScaledExtraction())

	img, err := tryAttempt(ctx, h, attempt{StageRequested, timeMs}, extractW, extractH)
	if err == nil {
		return NewFrame(scaleImage(img, maxW, maxH)), nil
	}
	lastErr := err
	if ctx.Err() != nil {
		return nil, fmt.Errorf("extract: %w", ctx.Err())
	}

	duration, err := h.DurationMs(ctx)
	if err != nil || duration < 0 {
		logging.Debug("Duration unavailable, falling back to start only: %v", err)
		duration = 0
	}

	tried := map[int64]bool{timeMs: true}
	for _, at := range fallbackAttempts(duration) {
		if tried[at.timeMs] {
			continue
		}
		tried[at.timeMs] = true

		if ctx.Err() != nil {
			return nil, fmt.Errorf("extract: %w", ctx.Err())
		}

		img, err := tryAttempt(ctx, h, at, extractW, extractH)
		if err != nil {
			lastErr = err
			continue
		}
		metrics.ThumbnailFallbackSuccess.WithLabelValues(string(at.stage)).Inc()
		logging.Debug("Frame extracted at fallback %s (%dms)", at.stage, at.timeMs)
		return NewFrame(scaleImage(img, maxW, maxH)), nil
	}

	// A deadline hit during the last attempt is not a decode failure
	if ctx.Err() != nil {
		return nil, fmt.Errorf("extract: %w", ctx.Err())
	}
	return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, lastErr)
}

func fallbackAttempts(durationMs int64) []attempt {
	return []attempt{
		{StageStart, 0},
		{StageHalf, durationMs / 2},
		{StageQuarter, durationMs / 4},
	}
}

// tryAttempt runs a single extraction. A panic in the backend counts as a
// failed attempt.
func tryAttempt(ctx context.Context, h Handle, at attempt, w, hgt int) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("extraction at %dms panicked: %v", at.timeMs, r)
		}
		result := "success"
		if err != nil {
			result = "failure"
			logging.Debug("Extraction %s at %dms failed: %v", at.stage, at.timeMs, err)
		}
		metrics.ThumbnailExtractionAttempts.WithLabelValues(string(at.stage), result).Inc()
	}()

	img, err = h.FrameAt(ctx, at.timeMs, w, hgt)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errEmptyFrame
	}
	return img, nil
}
