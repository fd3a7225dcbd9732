// Package audio holds the PCM types and error taxonomy shared by every
// stage of the playback pipeline.
package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// Format describes a negotiated PCM stream layout.
type Format struct {
	SampleRate beep.SampleRate
	Channels   int
}

// Duration converts a frame count to elapsed time at this format's rate.
func (f Format) Duration(frames int) time.Duration {
	return f.SampleRate.D(frames)
}

// Frames converts elapsed time to a frame count at this format's rate.
func (f Format) Frames(d time.Duration) int {
	return f.SampleRate.N(d)
}

// Batch is a fixed-capacity block of interleaved stereo samples. Whichever
// stage holds a Batch owns it; spent batches go back through the pool.
type Batch struct {
	Samples [][2]float64
	N       int // valid frames in Samples
}
