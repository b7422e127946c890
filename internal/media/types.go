package media

import (
	"fmt"
	"image"
	"net/url"
	"strings"
)

// Format is the output encoding of a thumbnail.
type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
	FormatWebPLossless
)

// FormatFromCode maps a wire format code to a Format.
// Unknown codes fall back to JPEG.
func FormatFromCode(code int) Format {
	switch Format(code) {
	case FormatPNG:
		return FormatPNG
	case FormatWebPLossless:
		return FormatWebPLossless
	default:
		return FormatJPEG
	}
}

// ParseFormat parses a format name such as "jpeg", "png" or "webp".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp", "webp_lossless":
		return FormatWebPLossless, nil
	default:
		return FormatJPEG, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, name)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWebPLossless:
		return "webp"
	default:
		return "jpg"
	}
}

// ContentType returns the MIME type of encoded output.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatWebPLossless:
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWebPLossless:
		return "webp"
	default:
		return "jpeg"
	}
}

// SourceKind identifies how a video reference is opened.
type SourceKind int

const (
	SourceLocalPath SourceKind = iota
	SourceFileURI
	SourceRemote
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocalPath:
		return "local"
	case SourceFileURI:
		return "file_uri"
	default:
		return "remote"
	}
}

const fileScheme = "file://"

// remoteSchemes are the only URL schemes accepted for remote sources.
var remoteSchemes = map[string]bool{"http": true, "https": true}

// Source is a video reference. Headers are only used for remote sources.
type Source struct {
	Kind     SourceKind
	Location string
	Headers  map[string]string
}

// ParseSource classifies a video reference. A leading "/" is a local path,
// a "file://" prefix is a file URI and anything else is remote.
func ParseSource(video string, headers map[string]string) Source {
	switch {
	case strings.HasPrefix(video, "/"):
		return Source{Kind: SourceLocalPath, Location: video}
	case strings.HasPrefix(video, fileScheme):
		return Source{Kind: SourceFileURI, Location: video}
	default:
		if headers == nil {
			headers = map[string]string{}
		}
		return Source{Kind: SourceRemote, Location: video, Headers: headers}
	}
}

// IsLocal reports whether the source is read from the local filesystem.
func (s Source) IsLocal() bool {
	return s.Kind != SourceRemote
}

// checkRemote rejects remote references that are not plain http(s) URLs
// or that carry malformed headers.
func (s Source) checkRemote() error {
	if s.Kind != SourceRemote {
		return nil
	}
	u, err := url.Parse(s.Location)
	if err != nil || !remoteSchemes[strings.ToLower(u.Scheme)] || u.Host == "" {
		return fmt.Errorf("%w: unsupported remote source %q", ErrInvalidRequest, s.Location)
	}
	for k, v := range s.Headers {
		if err := CheckHeader(k, v); err != nil {
			return err
		}
	}
	return nil
}

// CheckHeader rejects an HTTP header whose key is empty or contains a colon,
// or whose key or value contains CR or LF.
func CheckHeader(key, value string) error {
	if key == "" || strings.ContainsAny(key, "\r\n:") || strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: malformed header %q", ErrInvalidRequest, key)
	}
	return nil
}

// Path returns the filesystem path of a local source, or the URL of a
// remote one.
func (s Source) Path() string {
	if s.Kind == SourceFileURI {
		return strings.TrimPrefix(s.Location, fileScheme)
	}
	return s.Location
}

// Request describes a single thumbnail extraction.
// A zero MaxWidth or MaxHeight leaves that axis unconstrained.
type Request struct {
	Source      Source
	MaxWidth    int
	MaxHeight   int
	TimeMs      int64
	Format      Format
	Quality     int
	Destination string
}

// Validate rejects negative dimensions and times and remote sources other
// than http(s) URLs with well-formed headers. Quality is clamped to [0, 100].
func (r *Request) Validate() error {
	if r.Source.Location == "" {
		return fmt.Errorf("%w: video is required", ErrInvalidRequest)
	}
	if err := r.Source.checkRemote(); err != nil {
		return err
	}
	if r.MaxWidth < 0 || r.MaxHeight < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidRequest, r.MaxWidth, r.MaxHeight)
	}
	if r.TimeMs < 0 {
		return fmt.Errorf("%w: negative time %dms", ErrInvalidRequest, r.TimeMs)
	}
	switch {
	case r.Quality < 0:
		r.Quality = 0
	case r.Quality > 100:
		r.Quality = 100
	}
	return nil
}

// Frame is a decoded video frame. It is owned by a single request and
// released by the encoder.
type Frame struct {
	Image image.Image
}

// NewFrame wraps a decoded image.
func NewFrame(img image.Image) *Frame {
	return &Frame{Image: img}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dy()
}

// Release drops the pixel buffer. It is safe to call more than once.
func (f *Frame) Release() {
	if f != nil {
		f.Image = nil
	}
}
