package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/metrics"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var errNoFrame = errors.New("ffmpeg produced no frame")

// remoteProtocols limits what ffmpeg may open for a remote input, so a URL
// or playlist cannot reach local files through file:, concat: and friends.
const remoteProtocols = "http,https,tcp,tls,crypto"

type handle struct {
	backend *Backend
	input   string
	name    string
	file    *os.File
	headers string

	durationKnown bool
	durationMs    int64
}

func (h *handle) SupportsScaledExtraction() bool {
	return h.backend.cfg.ScaledExtraction
}

// FrameAt grabs the frame nearest to timeMs. Both width and height must be
// set for ffmpeg to scale; otherwise the frame comes back at native size.
func (h *handle) FrameAt(ctx context.Context, timeMs int64, width, height int) (image.Image, error) {
	args := h.frameArgs(timeMs, width, height)

	out, err := h.run(ctx, "ffmpeg", h.backend.cfg.FFmpegPath, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w at %dms", errNoFrame, timeMs)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg output: %w", err)
	}
	return img, nil
}

func (h *handle) frameArgs(timeMs int64, width, height int) []string {
	in := ffmpeg.KwArgs{"ss": formatSeconds(timeMs)}
	if h.file == nil {
		in["protocol_whitelist"] = remoteProtocols
	}
	if h.headers != "" {
		in["headers"] = h.headers
	}

	stream := ffmpeg.Input(h.input, in)
	if width > 0 && height > 0 && h.SupportsScaledExtraction() {
		stream = stream.Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", width, height)}, ffmpeg.KwArgs{"flags": "lanczos"})
	}

	return stream.
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2pipe", "vcodec": "png"}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		GetArgs()
}

// DurationMs returns the container duration. MP4 and MOV files are read
// directly; other inputs are probed.
func (h *handle) DurationMs(ctx context.Context) (int64, error) {
	if h.durationKnown {
		return h.durationMs, nil
	}

	if h.file != nil {
		ms, err := mp4Duration(h.file)
		if err == nil && ms > 0 {
			h.setDuration(ms)
			return ms, nil
		}
		if err != nil && !errors.Is(err, errNotMP4) {
			logging.Debug("mp4 duration failed for %s: %v", h.name, err)
		}
	}

	out, err := h.probe(ctx)
	if err != nil {
		return 0, err
	}
	ms, err := parseDuration(out)
	if err != nil {
		return 0, err
	}
	h.setDuration(ms)
	return ms, nil
}

func (h *handle) setDuration(ms int64) {
	h.durationKnown = true
	h.durationMs = ms
}

func (h *handle) probe(ctx context.Context) ([]byte, error) {
	return h.run(ctx, "ffprobe", h.backend.cfg.FFprobePath, h.durationArgs())
}

func (h *handle) durationArgs() []string {
	args := []string{"-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1"}
	if h.file == nil {
		args = append(args, "-protocol_whitelist", remoteProtocols)
	}
	if h.headers != "" {
		args = append(args, "-headers", h.headers)
	}
	return append(args, "-i", h.input)
}

// run executes a tool and returns its stdout. The local file, if any, is
// inherited as fd 3.
func (h *handle) run(ctx context.Context, tool, path string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if h.file != nil {
		cmd.ExtraFiles = []*os.File{h.file}
	}

	start := time.Now()
	err := cmd.Run()
	metrics.FFmpegInvocationDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("%s failed for %s: %w: %s", tool, h.name, err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (h *handle) Close() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

// parseDuration parses ffprobe's duration output in seconds.
func parseDuration(out []byte) (int64, error) {
	s := strings.TrimSpace(string(out))
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("duration unavailable")
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return int64(secs * 1000), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
