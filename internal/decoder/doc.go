// Package decoder implements media.Backend on top of the ffmpeg and ffprobe
// executables.
//
// Frames are grabbed with input seeking (-ss before -i), which lands on the
// nearest decodable frame, and piped back as PNG. Local files are handed to
// the child process as an inherited descriptor (/dev/fd/3) so the path is
// never re-resolved. Remote inputs are probed once when opened and receive
// the request headers through -headers.
//
// Durations of MP4/MOV files come straight from the mvhd box via mp4ff;
// everything else asks ffprobe.
package decoder
