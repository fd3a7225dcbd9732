// Package decode opens audio files and exposes them as lazy, seekable
// PCM streams. One variant exists per supported format family; callers
// select a variant implicitly at Open time and never depend on which
// one is active.
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/flntfnd/auric-tui/audio"
)

// Decoder is a finite, seekable PCM stream. It implements beep.Streamer so
// it can sit at the head of a streamer pipeline.
type Decoder interface {
	// Stream fills samples with decoded stereo frames. It returns the
	// number of frames written and false once the stream is exhausted
	// or failed; Err distinguishes the two.
	Stream(samples [][2]float64) (int, bool)

	// Err returns the decode error that ended the stream, if any.
	Err() error

	// Seek moves to target and returns the position actually reached,
	// which may differ for container formats with coarse seek tables.
	Seek(target time.Duration) (time.Duration, error)

	// Position returns the current stream position.
	Position() time.Duration

	// Len returns the total stream length.
	Len() time.Duration

	// Format returns the stream's native sample rate and channel count.
	Format() audio.Format

	// Close releases the underlying file.
	Close() error
}

type openFunc func(*os.File) (beep.StreamSeekCloser, beep.Format, error)

// One entry per supported format family. Adding a format means adding a
// row here, nothing else.
var variants = map[string]openFunc{
	".mp3":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	".wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".ogg":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".oga":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

// Supported reports whether path's extension maps to a known format family.
func Supported(path string) bool {
	_, ok := variants[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Open probes path and returns a decoder for its format family.
// Errors are folded into the shared taxonomy: a vanished or unreadable
// file is audio.ErrTrackMissing (files may disappear between indexing
// and playback), an unknown extension is audio.ErrUnsupportedFormat,
// and a backend failure is audio.ErrCorruptStream.
func Open(path string) (Decoder, error) {
	open, ok := variants[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrTrackMissing, err)
	}

	streamer, format, err := open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", audio.ErrCorruptStream, err)
	}

	return &fileDecoder{
		streamer: streamer,
		format:   format,
		file:     f,
	}, nil
}

// fileDecoder adapts a beep StreamSeekCloser to the Decoder contract.
type fileDecoder struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	file     *os.File
}

func (d *fileDecoder) Stream(samples [][2]float64) (int, bool) {
	return d.streamer.Stream(samples)
}

func (d *fileDecoder) Err() error {
	if err := d.streamer.Err(); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrCorruptStream, err)
	}
	return nil
}

func (d *fileDecoder) Seek(target time.Duration) (time.Duration, error) {
	if target < 0 {
		target = 0
	}
	n := d.format.SampleRate.N(target)
	if total := d.streamer.Len(); n > total {
		n = total
	}
	if err := d.streamer.Seek(n); err != nil {
		return d.Position(), fmt.Errorf("%w: %v", audio.ErrSeekUnsupported, err)
	}
	return d.Position(), nil
}

func (d *fileDecoder) Position() time.Duration {
	return d.format.SampleRate.D(d.streamer.Position())
}

func (d *fileDecoder) Len() time.Duration {
	return d.format.SampleRate.D(d.streamer.Len())
}

func (d *fileDecoder) Format() audio.Format {
	return audio.Format{SampleRate: d.format.SampleRate, Channels: d.format.NumChannels}
}

func (d *fileDecoder) Close() error {
	err := d.streamer.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}
