package filesystem

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

// recordingObserver captures observer calls for assertions.
type recordingObserver struct {
	mu         sync.Mutex
	operations map[string]int
	errors     map[string]int
	attempts   map[string]int
	successes  map[string]int
	failures   map[string]int
	stale      map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		operations: map[string]int{},
		errors:     map[string]int{},
		attempts:   map[string]int{},
		successes:  map[string]int{},
		failures:   map[string]int{},
		stale:      map[string]int{},
	}
}

func (r *recordingObserver) ObserveOperation(op string, _ float64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations[op]++
	if err != nil {
		r.errors[op]++
	}
}

func (r *recordingObserver) ObserveRetryAttempt(op string) {
	r.mu.Lock()
	r.attempts[op]++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveRetrySuccess(op string) {
	r.mu.Lock()
	r.successes[op]++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveRetryFailure(op string) {
	r.mu.Lock()
	r.failures[op]++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveStaleError(op string) {
	r.mu.Lock()
	r.stale[op]++
	r.mu.Unlock()
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetry_StaleThenSuccess(t *testing.T) {
	obs := newRecordingObserver()
	SetObserver(obs)
	defer SetObserver(nil)

	calls := 0
	err := withRetry("stat", "/nfs/clip.mov", fastRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return syscall.ESTALE
		}
		return nil
	})

	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if obs.stale["stat"] != 2 || obs.attempts["stat"] != 2 || obs.successes["stat"] != 1 {
		t.Errorf("unexpected observer counts: stale=%d attempts=%d successes=%d",
			obs.stale["stat"], obs.attempts["stat"], obs.successes["stat"])
	}
	if obs.errors["stat"] != 0 {
		t.Errorf("errors = %d, want 0", obs.errors["stat"])
	}
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	obs := newRecordingObserver()
	SetObserver(obs)
	defer SetObserver(nil)

	calls := 0
	err := withRetry("open", "/nfs/clip.mov", fastRetryConfig(), func() error {
		calls++
		return syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("withRetry() error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (1 + MaxRetries)", calls)
	}
	if obs.failures["open"] != 1 || obs.errors["open"] != 1 {
		t.Errorf("failures=%d errors=%d, want 1/1", obs.failures["open"], obs.errors["open"])
	}
}

func TestWithRetry_NonStaleFailsImmediately(t *testing.T) {
	calls := 0
	err := withRetry("stat", "/missing", fastRetryConfig(), func() error {
		calls++
		return syscall.ENOENT
	})

	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("withRetry() error = %v, want ENOENT", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStatAndOpenWithRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	content := []byte("not really a video")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("StatWithRetry() error = %v", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", info.Size(), len(content))
	}

	f, err := OpenWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("OpenWithRetry() error = %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), content) {
		t.Errorf("read %q, want %q", buf.Bytes(), content)
	}

	if _, err := StatWithRetry(filepath.Join(dir, "missing.mov"), DefaultRetryConfig()); !os.IsNotExist(err) {
		t.Errorf("StatWithRetry(missing) error = %v, want not-exist", err)
	}
	if _, err := OpenWithRetry(filepath.Join(dir, "missing.mov"), DefaultRetryConfig()); !os.IsNotExist(err) {
		t.Errorf("OpenWithRetry(missing) error = %v, want not-exist", err)
	}
}

func TestWriteFileWithRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.jpg")

	if err := WriteFileWithRetry(path, []byte("first"), 0o644, DefaultRetryConfig()); err != nil {
		t.Fatalf("WriteFileWithRetry() error = %v", err)
	}
	if err := WriteFileWithRetry(path, []byte("second"), 0o644, DefaultRetryConfig()); err != nil {
		t.Fatalf("WriteFileWithRetry() overwrite error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("file content = %q, want %q", got, "second")
	}

	missingDir := filepath.Join(dir, "nope", "clip.jpg")
	if err := WriteFileWithRetry(missingDir, []byte("x"), 0o644, DefaultRetryConfig()); err == nil {
		t.Error("WriteFileWithRetry() into missing directory should fail")
	}
}
