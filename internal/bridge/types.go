package bridge

import (
	"video-thumbnail/internal/media"
)

// Request modes.
const (
	ModeData = "data"
	ModeFile = "file"
)

// Error codes.
const (
	CodeException   = "exception"
	CodeNoThumbnail = "no_thumbnail"
)

// Request is the wire form of a thumbnail request.
type Request struct {
	Video   string            `json:"video"`
	Headers map[string]string `json:"headers,omitempty"`
	Format  int               `json:"format"`
	MaxW    int               `json:"maxw"`
	MaxH    int               `json:"maxh"`
	TimeMs  int64             `json:"timeMs"`
	Quality int               `json:"quality"`
	Mode    string            `json:"mode"`
	Path    *string           `json:"path,omitempty"`
}

// MediaRequest converts the wire request. Unknown format codes become JPEG.
func (r Request) MediaRequest() media.Request {
	req := media.Request{
		Source:    media.ParseSource(r.Video, r.Headers),
		MaxWidth:  r.MaxW,
		MaxHeight: r.MaxH,
		TimeMs:    r.TimeMs,
		Format:    media.FormatFromCode(r.Format),
		Quality:   r.Quality,
	}
	if r.Path != nil {
		req.Destination = *r.Path
	}
	return req
}

// CallError is the error half of a Response.
type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CallError) Error() string {
	return e.Code + ": " + e.Message
}

// Response carries the outcome of one request. Exactly one of Data, Path,
// Err or NotImplemented is set.
type Response struct {
	ID             string
	Mode           string
	Format         media.Format
	Data           []byte
	Path           string
	Err            *CallError
	NotImplemented bool
}

// OK reports whether the request produced a thumbnail.
func (r Response) OK() bool {
	return r.Err == nil && !r.NotImplemented
}

func (r Response) outcome() string {
	switch {
	case r.NotImplemented:
		return "not_implemented"
	case r.Err != nil:
		return r.Err.Code
	default:
		return "success"
	}
}
