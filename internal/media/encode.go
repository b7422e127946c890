package media

import (
	"bytes"
	"fmt"
	"time"

	"video-thumbnail/internal/metrics"

	"github.com/disintegration/imaging"
)

// Encode serializes frame in the given format. Quality applies to JPEG and
// to WebP compression effort; PNG ignores it. The frame is released before
// Encode returns.
func Encode(frame *Frame, format Format, quality int) ([]byte, error) {
	defer frame.Release()

	if frame == nil || frame.Image == nil || frame.Image.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrEncodingFailed)
	}

	start := time.Now()
	defer func() {
		metrics.ThumbnailPhaseDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
	}()

	quality = min(max(quality, 0), 100)

	var data []byte
	switch format {
	case FormatPNG:
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, frame.Image, imaging.PNG); err != nil {
			return nil, fmt.Errorf("%w: png: %w", ErrEncodingFailed, err)
		}
		data = buf.Bytes()
	case FormatWebPLossless:
		b, err := encodeWebPLossless(frame.Image, quality)
		if err != nil {
			return nil, fmt.Errorf("%w: webp: %w", ErrEncodingFailed, err)
		}
		data = b
	default:
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, frame.Image, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %w", ErrEncodingFailed, err)
		}
		data = buf.Bytes()
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s encoder produced no data", ErrEncodingFailed, format)
	}
	metrics.ThumbnailEncodedBytes.WithLabelValues(format.String()).Observe(float64(len(data)))
	return data, nil
}

// jpegQuality keeps quality 0 usable; the jpeg encoder treats values
// below 1 as 1.
func jpegQuality(q int) int {
	return max(q, 1)
}
