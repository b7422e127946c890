package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func TestGeneratorData(t *testing.T) {
	path := writeVideoFile(t, t.TempDir(), "clip.mp4")

	tests := []struct {
		name         string
		format       Format
		maxW, maxH   int
		magic        []byte
		wantW, wantH int
	}{
		{"jpeg native", FormatJPEG, 0, 0, []byte{0xFF, 0xD8}, 120, 80},
		{"png width only", FormatPNG, 60, 0, []byte{0x89, 'P', 'N', 'G'}, 60, 40},
		{"jpeg both bounds", FormatJPEG, 30, 30, []byte{0xFF, 0xD8}, 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFakeHandle(120, 80)
			g := NewGenerator(&fakeBackend{handle: h}, t.TempDir())

			data, err := g.Data(context.Background(), Request{
				Source:    ParseSource(path, nil),
				MaxWidth:  tt.maxW,
				MaxHeight: tt.maxH,
				Format:    tt.format,
				Quality:   80,
			})
			if err != nil {
				t.Fatalf("Data() error = %v", err)
			}
			if !bytes.HasPrefix(data, tt.magic) {
				t.Errorf("output does not start with % x", tt.magic)
			}

			img, err := imaging.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("size = %v, want %dx%d", img.Bounds(), tt.wantW, tt.wantH)
			}
			if h.closed != 1 {
				t.Errorf("handle closed %d times, want 1", h.closed)
			}
		})
	}
}

func TestGeneratorDataNoThumbnail(t *testing.T) {
	path := writeVideoFile(t, t.TempDir(), "corrupt.mp4")
	h := newFakeHandle(16, 16)
	h.frameFn = func(int64) (bool, error) { return false, errors.New("invalid data found when processing input") }
	g := NewGenerator(&fakeBackend{handle: h}, t.TempDir())

	_, err := g.Data(context.Background(), Request{Source: ParseSource(path, nil)})
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("error = %v, want ErrDecodeFailure", err)
	}
	if h.closed != 1 {
		t.Errorf("handle closed %d times, want 1", h.closed)
	}
}

func TestGeneratorDataContextDone(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		wantErr error
	}{
		{"cancelled", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}, context.Canceled},
		{"deadline exceeded", func() (context.Context, context.CancelFunc) {
			return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		}, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeVideoFile(t, t.TempDir(), "clip.mp4")
			h := newFakeHandle(16, 16)
			h.frameFn = func(int64) (bool, error) { return false, errors.New("signal: killed") }
			g := NewGenerator(&fakeBackend{handle: h}, t.TempDir())

			ctx, cancel := tt.ctx()
			defer cancel()

			_, err := g.Data(ctx, Request{Source: ParseSource(path, nil)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrDecodeFailure) {
				t.Errorf("error = %v, must not be ErrDecodeFailure", err)
			}
		})
	}
}

func TestGeneratorDataMissingSource(t *testing.T) {
	g := NewGenerator(&fakeBackend{handle: newFakeHandle(8, 8)}, t.TempDir())

	_, err := g.Data(context.Background(), Request{Source: ParseSource("/does/not/exist.mp4", nil)})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestGeneratorDataInvalidRequest(t *testing.T) {
	g := NewGenerator(&fakeBackend{handle: newFakeHandle(8, 8)}, t.TempDir())

	_, err := g.Data(context.Background(), Request{Source: ParseSource("/a.mp4", nil), MaxWidth: -3})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestGeneratorFile(t *testing.T) {
	dir := t.TempDir()
	path := writeVideoFile(t, dir, "clip.mov")
	h := newFakeHandle(64, 36)
	g := NewGenerator(&fakeBackend{handle: h}, t.TempDir())

	out, err := g.File(context.Background(), Request{
		Source:  ParseSource(path, nil),
		Format:  FormatPNG,
		Quality: 50,
	})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}

	if want := filepath.Join(dir, "clip.png"); out != want {
		t.Errorf("path = %q, want %q", out, want)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("written file is not a PNG")
	}
	if h.closed != 1 {
		t.Errorf("handle closed %d times, want 1", h.closed)
	}
}

func TestGeneratorFileRemoteGoesToCache(t *testing.T) {
	cacheDir := t.TempDir()
	backend := &fakeBackend{handle: newFakeHandle(32, 32)}
	g := NewGenerator(backend, cacheDir)

	out, err := g.File(context.Background(), Request{
		Source: ParseSource("https://cdn.example.com/videos/clip.mov?sig=1", map[string]string{"X-Token": "t"}),
		Format: FormatJPEG,
	})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if want := filepath.Join(cacheDir, "clip.jpg"); out != want {
		t.Errorf("path = %q, want %q", out, want)
	}
	if backend.urlHeaders["X-Token"] != "t" {
		t.Errorf("headers not forwarded: %v", backend.urlHeaders)
	}
}

func TestGeneratorFileWriteFailure(t *testing.T) {
	path := writeVideoFile(t, t.TempDir(), "clip.mp4")
	g := NewGenerator(&fakeBackend{handle: newFakeHandle(16, 16)}, t.TempDir())

	_, err := g.File(context.Background(), Request{
		Source:      ParseSource(path, nil),
		Destination: filepath.Join(t.TempDir(), "missing", "dir") + "/",
	})
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed", err)
	}
}

func TestGeneratorFileNoThumbnailWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeVideoFile(t, dir, "clip.mp4")
	h := newFakeHandle(16, 16)
	h.frameFn = func(int64) (bool, error) { return false, nil }
	g := NewGenerator(&fakeBackend{handle: h}, t.TempDir())

	_, err := g.File(context.Background(), Request{Source: ParseSource(path, nil)})
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("error = %v, want ErrDecodeFailure", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "clip.jpg")); !os.IsNotExist(err) {
		t.Errorf("thumbnail file should not exist, stat err = %v", err)
	}
}

func TestGeneratorFileOutputRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	cacheDir := t.TempDir()
	insideVideo := writeVideoFile(t, root, "inside.mp4")
	outsideVideo := writeVideoFile(t, outside, "outside.mp4")
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		video       string
		destination string
		wantPath    string
		wantErr     bool
	}{
		{"default next to video inside root", insideVideo, "", filepath.Join(root, "inside.jpg"), false},
		{"destination inside root", outsideVideo, filepath.Join(root, "thumb.jpg"), filepath.Join(root, "thumb.jpg"), false},
		{"directory inside root", outsideVideo, root + "/", filepath.Join(root, "outside.jpg"), false},
		{"remote default goes to cache", "https://cdn.example.com/v/clip.mov", "", filepath.Join(cacheDir, "clip.jpg"), false},
		{"default next to video outside root", outsideVideo, "", "", true},
		{"destination outside root", insideVideo, filepath.Join(outside, "thumb.jpg"), "", true},
		{"dot-dot escape", insideVideo, filepath.Join(root, "..", filepath.Base(outside), "thumb.jpg"), "", true},
		{"symlink escape", insideVideo, filepath.Join(root, "escape", "thumb.jpg"), "", true},
		{"remote destination outside root", "https://cdn.example.com/v/clip.mov", filepath.Join(outside, "r.jpg"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&fakeBackend{handle: newFakeHandle(16, 16)}, cacheDir)
			g.SetOutputRoot(root)

			out, err := g.File(context.Background(), Request{
				Source:      ParseSource(tt.video, nil),
				Destination: tt.destination,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("File() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("error = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if out != tt.wantPath {
				t.Errorf("path = %q, want %q", out, tt.wantPath)
			}
		})
	}

	entries, err := os.ReadDir(outside)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "outside.mp4" {
			t.Errorf("file written outside the root: %s", e.Name())
		}
	}
}

func TestWithinDir(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"direct child", filepath.Join(dir, "a.jpg"), true},
		{"nested", filepath.Join(dir, "x", "y", "a.jpg"), true},
		{"dir itself", dir, false},
		{"parent", filepath.Dir(dir), false},
		{"sibling with shared prefix", dir + "-other/a.jpg", false},
		{"dot-dot", filepath.Join(dir, "..", "a.jpg"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinDir(tt.path, dir); got != tt.want {
				t.Errorf("withinDir(%q, %q) = %v, want %v", tt.path, dir, got, tt.want)
			}
		})
	}
	if withinDir(filepath.Join(dir, "a.jpg"), "") {
		t.Error("empty dir must not contain anything")
	}
}
