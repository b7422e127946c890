package decoder

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

var errNotMP4 = errors.New("not an ISO BMFF file")

// mp4Duration reads the movie duration from the mvhd box. The file offset
// is restored to the start afterwards.
func mp4Duration(f *os.File) (int64, error) {
	defer func() {
		_, _ = f.Seek(0, io.SeekStart)
	}()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	var hdr [8]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return 0, errNotMP4
	}
	if string(hdr[4:8]) != "ftyp" {
		return 0, errNotMP4
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	parsed, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return 0, fmt.Errorf("decode mp4: %w", err)
	}

	moov := parsed.Moov
	if moov == nil && parsed.Init != nil {
		moov = parsed.Init.Moov
	}
	if moov == nil || moov.Mvhd == nil {
		return 0, fmt.Errorf("no mvhd box")
	}

	mvhd := moov.Mvhd
	if mvhd.Timescale == 0 {
		return 0, fmt.Errorf("mvhd timescale is zero")
	}
	return int64(mvhd.Duration * 1000 / uint64(mvhd.Timescale)), nil
}
