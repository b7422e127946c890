package decoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/media"
)

// localInput is the path ffmpeg reads an inherited descriptor from.
// os/exec maps ExtraFiles[0] to fd 3 in the child.
const localInput = "/dev/fd/3"

// Config configures the ffmpeg backend.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	// ScaledExtraction lets ffmpeg scale during extraction when both
	// dimensions are requested.
	ScaledExtraction bool
}

// Backend opens videos for frame extraction with ffmpeg.
type Backend struct {
	cfg Config
}

// New creates a backend. Empty tool paths default to "ffmpeg" and "ffprobe"
// on PATH.
func New(cfg Config) *Backend {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return &Backend{cfg: cfg}
}

// OpenFile wraps an open local file. The returned handle owns f.
func (b *Backend) OpenFile(f *os.File) (media.Handle, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}
	logging.Debug("Opening local video %s", f.Name())
	return &handle{
		backend: b,
		input:   localInput,
		name:    f.Name(),
		file:    f,
	}, nil
}

// OpenURL probes a remote video with ffprobe and returns a handle for it.
// A probe failure means the source is unreachable or not a video.
func (b *Backend) OpenURL(ctx context.Context, url string, headers map[string]string) (media.Handle, error) {
	hdr, err := formatHeaders(headers)
	if err != nil {
		return nil, err
	}
	h := &handle{
		backend: b,
		input:   url,
		name:    url,
		headers: hdr,
	}

	out, err := h.probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	if ms, err := parseDuration(out); err == nil {
		h.setDuration(ms)
	} else {
		logging.Debug("No duration for %s: %v", url, err)
	}
	return h, nil
}

// formatHeaders renders a header map in the form ffmpeg's -headers option
// expects, sorted for stable command lines. Keys or values carrying CR or LF
// are rejected since they would split into extra request headers.
func formatHeaders(headers map[string]string) (string, error) {
	if len(headers) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if err := media.CheckHeader(k, headers[k]); err != nil {
			return "", err
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(headers[k])
		sb.WriteString("\r\n")
	}
	return sb.String(), nil
}
