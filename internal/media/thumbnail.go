package media

import (
	"context"
	"fmt"
	"time"

	"video-thumbnail/internal/filesystem"
	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/metrics"
)

// Generator runs the thumbnail pipeline against a decoding backend.
type Generator struct {
	backend    Backend
	cacheDir   string
	outputRoot string
	retry      filesystem.RetryConfig
}

// NewGenerator creates a generator. cacheDir receives file-mode output for
// remote sources when no destination is given.
func NewGenerator(backend Backend, cacheDir string) *Generator {
	logging.Debug("Generator: cache dir: %s", cacheDir)
	return &Generator{
		backend:  backend,
		cacheDir: cacheDir,
		retry:    filesystem.DefaultRetryConfig(),
	}
}

// CacheDir returns the directory used for remote file-mode output.
func (g *Generator) CacheDir() string {
	return g.cacheDir
}

// SetOutputRoot confines file-mode output to root. An empty root lifts the
// restriction. Remote sources without a destination may still be written to
// the cache directory.
func (g *Generator) SetOutputRoot(root string) {
	g.outputRoot = root
}

func (g *Generator) checkOutputRoot(out string, req Request) error {
	if g.outputRoot == "" || withinDir(out, g.outputRoot) {
		return nil
	}
	if req.Destination == "" && !req.Source.IsLocal() && withinDir(out, g.cacheDir) {
		return nil
	}
	return fmt.Errorf("%w: output %s is outside %s", ErrInvalidRequest, out, g.outputRoot)
}

// Data extracts a thumbnail and returns the encoded bytes.
func (g *Generator) Data(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return g.render(ctx, req)
}

// File extracts a thumbnail, writes it to disk and returns the absolute path.
func (g *Generator) File(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	data, err := g.render(ctx, req)
	if err != nil {
		return "", err
	}

	out, err := ResolveOutputPath(req.Source, req.Destination, req.Format, g.cacheDir)
	if err != nil {
		return "", err
	}
	if err := g.checkOutputRoot(out, req); err != nil {
		return "", err
	}
	if err := WriteOutput(out, data, g.retry); err != nil {
		return "", err
	}

	logging.Debug("Thumbnail written: %s (%d bytes)", out, len(data))
	return out, nil
}

func (g *Generator) render(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	handle, err := OpenSource(ctx, g.backend, req.Source, g.retry)
	metrics.ThumbnailPhaseDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			logging.Debug("Failed to close handle for %s: %v", req.Source.Location, cerr)
		}
	}()

	frame, err := ExtractFrame(ctx, handle, req.TimeMs, req.MaxWidth, req.MaxHeight)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Source.Location, err)
	}

	return Encode(frame, req.Format, req.Quality)
}
