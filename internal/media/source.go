package media

import (
	"context"
	"fmt"
	"image"
	"os"

	"video-thumbnail/internal/filesystem"
	"video-thumbnail/internal/logging"
)

// Handle is an open video ready for frame extraction.
type Handle interface {
	// FrameAt decodes the frame nearest to timeMs. When width and height are
	// both non-zero and SupportsScaledExtraction reports true, the frame is
	// returned at that size; otherwise it is returned at native size.
	FrameAt(ctx context.Context, timeMs int64, width, height int) (image.Image, error)

	// DurationMs returns the media duration in milliseconds.
	DurationMs(ctx context.Context) (int64, error)

	SupportsScaledExtraction() bool

	Close() error
}

// Backend opens video handles.
type Backend interface {
	// OpenFile takes ownership of f. The handle closes it.
	OpenFile(f *os.File) (Handle, error)

	OpenURL(ctx context.Context, url string, headers map[string]string) (Handle, error)
}

// OpenSource resolves src into an open handle. Local sources are opened
// through a file descriptor so the path is not re-resolved while decoding.
func OpenSource(ctx context.Context, backend Backend, src Source, retry filesystem.RetryConfig) (Handle, error) {
	if !src.IsLocal() {
		if err := src.checkRemote(); err != nil {
			return nil, err
		}
		h, err := backend.OpenURL(ctx, src.Location, src.Headers)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Location, err)
		}
		return h, nil
	}

	path := src.Path()
	info, err := filesystem.StatWithRetry(path, retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, path)
	}

	f, err := filesystem.OpenWithRetry(path, retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}

	h, err := backend.OpenFile(f)
	if err != nil {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("Failed to close %s: %v", path, cerr)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	return h, nil
}
