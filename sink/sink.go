// Package sink abstracts the platform audio output device. The device
// pulls pre-decoded batches at its own cadence; when none are ready it
// emits silence and counts an underrun instead of stalling.
package sink

import "github.com/flntfnd/auric-tui/audio"

// BatchSource is the consumer side of the playback buffer. Pop must never
// block; Recycle gives consumed batches back.
type BatchSource interface {
	Pop() (audio.Batch, bool)
	Recycle(b audio.Batch)
}

// Sink drives an audio output device.
type Sink interface {
	// Open negotiates an output format with the device and returns the
	// format actually granted. Fails with audio.ErrDeviceUnavailable or
	// audio.ErrFormatNegotiationFailed.
	Open(want audio.Format) (audio.Format, error)

	// Start begins pulling batches from src at device cadence.
	Start(src BatchSource) error

	// Pause suspends or resumes device consumption.
	Pause(paused bool)

	// Played returns the total sample frames consumed from src.
	Played() int64

	// Underruns returns how many device reads found no data ready.
	Underruns() int64

	// Flush drops any partially consumed batch held by the device path.
	Flush()

	// Close releases the device.
	Close() error
}
