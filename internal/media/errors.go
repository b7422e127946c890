package media

import "errors"

var (
	// ErrSourceUnavailable means the video could not be opened.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDecodeFailure means no timestamp yielded a decodable frame.
	ErrDecodeFailure = errors.New("no thumbnail")

	ErrEncodingFailed = errors.New("encoding failed")
	ErrWriteFailed    = errors.New("write failed")
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedOperation is returned for request modes that do not exist.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
