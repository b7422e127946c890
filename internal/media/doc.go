// Package media extracts a single still frame from a video and encodes it as
// JPEG, PNG or lossless WebP.
//
// The pipeline runs in order:
//   - OpenSource resolves a local path, file:// URI or remote URL into a
//     Handle supplied by a Backend
//   - ExtractFrame decodes a frame near the requested time, falling back to
//     the start, half and quarter of the duration
//   - scaling fills in an unconstrained axis from the native aspect ratio
//   - Encode serializes the frame; WebP goes through libvips
//   - ResolveOutputPath and WriteOutput place file-mode output on disk
//
// Generator ties these together. Failures are classified with the sentinel
// errors in errors.go; ErrDecodeFailure is the ordinary "no thumbnail"
// outcome.
package media
