package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"video-thumbnail/internal/filesystem"
)

func writeVideoFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestOpenSourceLocal(t *testing.T) {
	dir := t.TempDir()
	path := writeVideoFile(t, dir, "clip.mp4")

	tests := []struct {
		name  string
		video string
	}{
		{"absolute path", path},
		{"file uri", "file://" + path},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{handle: newFakeHandle(8, 8)}
			h, err := OpenSource(context.Background(), backend, ParseSource(tt.video, nil), filesystem.DefaultRetryConfig())
			if err != nil {
				t.Fatalf("OpenSource() error = %v", err)
			}
			defer h.Close()

			if backend.openedFile != path {
				t.Errorf("opened %q, want %q", backend.openedFile, path)
			}
			if backend.openedURL != "" {
				t.Errorf("local source must not be opened as URL, got %q", backend.openedURL)
			}
		})
	}
}

func TestOpenSourceLocalFailures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		video string
	}{
		{"missing file", filepath.Join(dir, "missing.mp4")},
		{"directory", dir},
		{"missing file uri", "file://" + filepath.Join(dir, "missing.mp4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{handle: newFakeHandle(8, 8)}
			_, err := OpenSource(context.Background(), backend, ParseSource(tt.video, nil), filesystem.DefaultRetryConfig())
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Errorf("error = %v, want ErrSourceUnavailable", err)
			}
		})
	}
}

func TestOpenSourceBackendRejectsFile(t *testing.T) {
	path := writeVideoFile(t, t.TempDir(), "clip.mp4")
	backend := &fakeBackend{handle: newFakeHandle(8, 8), openErr: errors.New("bad container")}

	_, err := OpenSource(context.Background(), backend, ParseSource(path, nil), filesystem.DefaultRetryConfig())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestOpenSourceRemote(t *testing.T) {
	backend := &fakeBackend{handle: newFakeHandle(8, 8)}
	headers := map[string]string{"Referer": "https://example.com"}

	h, err := OpenSource(context.Background(), backend, ParseSource("https://cdn.example.com/v.mp4", headers), filesystem.DefaultRetryConfig())
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer h.Close()

	if backend.openedURL != "https://cdn.example.com/v.mp4" {
		t.Errorf("opened URL %q", backend.openedURL)
	}
	if backend.urlHeaders["Referer"] != "https://example.com" {
		t.Errorf("headers = %v", backend.urlHeaders)
	}
}

func TestOpenSourceRemoteFailure(t *testing.T) {
	backend := &fakeBackend{handle: newFakeHandle(8, 8), openErr: errors.New("403 Forbidden")}

	_, err := OpenSource(context.Background(), backend, ParseSource("https://cdn.example.com/v.mp4", nil), filesystem.DefaultRetryConfig())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestOpenSourceRejectsNonHTTPRemote(t *testing.T) {
	tests := []struct {
		name    string
		video   string
		headers map[string]string
	}{
		{"file protocol", "file:/etc/hostname", nil},
		{"concat protocol", "concat:/etc/passwd|/etc/hosts", nil},
		{"header injection", "https://cdn.example.com/v.mp4", map[string]string{"Referer": "a\r\nX: y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{handle: newFakeHandle(8, 8)}
			_, err := OpenSource(context.Background(), backend, ParseSource(tt.video, tt.headers), filesystem.DefaultRetryConfig())
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error = %v, want ErrInvalidRequest", err)
			}
			if backend.openedURL != "" {
				t.Errorf("backend opened %q", backend.openedURL)
			}
		})
	}
}
