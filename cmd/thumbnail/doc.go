// Command thumbnail extracts a single thumbnail from a video without running
// the HTTP server. It uses the same decoding pipeline as the server.
//
// Usage:
//
//	thumbnail data --video <source> [flags] [--out FILE]
//	thumbnail file --video <source> [flags] [--path DEST]
//
// The data command writes the encoded image to --out, or to stdout when
// stdout is not a terminal. The file command writes the image next to a
// local video (or to --path, or the cache directory for remote videos) and
// prints the absolute path.
//
// Common flags:
//
//	--video, -i     local path, file:// URI or http(s) URL
//	--header, -H    KEY=VALUE header sent with remote requests (repeatable)
//	--format, -f    jpeg (default), png or webp
//	--maxw, --maxh  bounding box; 0 leaves an axis unconstrained
//	--time, -t      frame time in milliseconds
//	--quality, -q   encoder quality 0-100 (default 90)
//
// Environment:
//
//	FFMPEG_PATH   ffmpeg binary (default: ffmpeg)
//	FFPROBE_PATH  ffprobe binary (default: ffprobe)
//	CACHE_DIR     output directory for remote videos
//	LOG_LEVEL     log level (default: warn)
//
// Exit status is 0 on success, 2 when no frame could be decoded from the
// video, and 1 for every other failure.
package main
