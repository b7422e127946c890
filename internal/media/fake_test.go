package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

var errNoFrame = errors.New("no frame at timestamp")

// fakeHandle serves synthetic frames. frameFn decides per timestamp whether
// a frame exists.
type fakeHandle struct {
	mu         sync.Mutex
	nativeW    int
	nativeH    int
	durationMs int64
	durErr     error
	scaled     bool
	frameFn    func(timeMs int64) (bool, error)
	calls      []int64
	sizes      [][2]int
	closed     int
	file       *os.File
}

func newFakeHandle(w, h int) *fakeHandle {
	return &fakeHandle{nativeW: w, nativeH: h, durationMs: 10000}
}

// frameImage renders a deterministic image whose colour depends on timeMs.
func frameImage(w, h int, timeMs int64) image.Image {
	c := color.NRGBA{R: uint8(timeMs / 10 % 256), G: uint8(timeMs % 251), B: 128, A: 255}
	img := imaging.New(w, h, c)
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{R: 255, A: 255})
	}
	return img
}

func (f *fakeHandle) FrameAt(_ context.Context, timeMs int64, width, height int) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, timeMs)
	f.sizes = append(f.sizes, [2]int{width, height})
	f.mu.Unlock()

	if f.frameFn != nil {
		ok, err := f.frameFn(timeMs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNoFrame
		}
	}
	if width > 0 && height > 0 && f.scaled {
		return frameImage(width, height, timeMs), nil
	}
	return frameImage(f.nativeW, f.nativeH, timeMs), nil
}

func (f *fakeHandle) DurationMs(context.Context) (int64, error) {
	return f.durationMs, f.durErr
}

func (f *fakeHandle) SupportsScaledExtraction() bool { return f.scaled }

func (f *fakeHandle) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

func (f *fakeHandle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeBackend hands out a single fakeHandle.
type fakeBackend struct {
	handle     *fakeHandle
	openErr    error
	urlHeaders map[string]string
	openedURL  string
	openedFile string
}

func (b *fakeBackend) OpenFile(f *os.File) (Handle, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.openedFile = f.Name()
	b.handle.file = f
	return b.handle, nil
}

func (b *fakeBackend) OpenURL(_ context.Context, url string, headers map[string]string) (Handle, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.openedURL = url
	b.urlHeaders = headers
	return b.handle, nil
}
