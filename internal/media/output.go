package media

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"video-thumbnail/internal/filesystem"
	"video-thumbnail/internal/metrics"
)

const defaultRemoteName = "thumbnail"

// ResolveOutputPath returns the absolute path a thumbnail of src is written
// to. Without a destination local sources are written next to the video and
// remote sources into cacheDir. A destination ending in the format's
// extension is used verbatim; any other destination is a directory.
func ResolveOutputPath(src Source, destination string, format Format, cacheDir string) (string, error) {
	name := outputFileName(src, format)

	var out string
	switch {
	case destination == "" && src.IsLocal():
		out = name
	case destination == "":
		if cacheDir == "" {
			cacheDir = filepath.Join(os.TempDir(), "video-thumbnail")
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return "", fmt.Errorf("%w: cache dir %s: %w", ErrWriteFailed, cacheDir, err)
		}
		out = filepath.Join(cacheDir, filepath.Base(name))
	case hasFormatExtension(destination, format):
		out = destination
	case strings.HasSuffix(destination, "/") || strings.HasSuffix(destination, string(os.PathSeparator)):
		out = destination + filepath.Base(name)
	default:
		out = destination + string(os.PathSeparator) + filepath.Base(name)
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, out, err)
	}
	return abs, nil
}

// withinDir reports whether path lies strictly inside dir. Symlinks are
// resolved on both sides as far as the paths exist.
func withinDir(path, dir string) bool {
	if dir == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(resolvePath(dir), resolvePath(abs))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolvePath evaluates symlinks in the longest existing prefix of p.
func resolvePath(p string) string {
	p = filepath.Clean(p)
	var rest []string
	for {
		if r, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(append([]string{r}, rest...)...)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return filepath.Join(append([]string{p}, rest...)...)
		}
		rest = append([]string{filepath.Base(p)}, rest...)
		p = parent
	}
}

// WriteOutput writes data to path. The parent directory must exist.
func WriteOutput(path string, data []byte, retry filesystem.RetryConfig) error {
	start := time.Now()
	defer func() {
		metrics.ThumbnailPhaseDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())
	}()

	if err := filesystem.WriteFileWithRetry(path, data, 0644, retry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}

// outputFileName derives the default thumbnail path for src. For local
// sources the result keeps the source directory; for remote sources only the
// last URL path segment is used.
func outputFileName(src Source, format Format) string {
	if src.IsLocal() {
		return replaceExtension(src.Path(), format.Extension())
	}

	base := defaultRemoteName
	if u, err := url.Parse(src.Location); err == nil {
		if b := path.Base(u.Path); b != "." && b != "/" && b != "" {
			base = b
		}
	}
	return replaceExtension(base, format.Extension())
}

// replaceExtension swaps the extension of the last path segment, appending
// one when the segment has none.
func replaceExtension(p, ext string) string {
	dir, file := splitLast(p)
	if i := strings.LastIndex(file, "."); i > 0 {
		file = file[:i]
	}
	return dir + file + "." + ext
}

func splitLast(p string) (string, string) {
	i := strings.LastIndex(p, "/")
	return p[:i+1], p[i+1:]
}

// hasFormatExtension requires the dot, so "/out/myjpg" names a directory.
func hasFormatExtension(destination string, format Format) bool {
	lower := strings.ToLower(destination)
	if strings.HasSuffix(lower, "."+format.Extension()) {
		return true
	}
	return format == FormatJPEG && strings.HasSuffix(lower, ".jpeg")
}
