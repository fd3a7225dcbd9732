// Package player orchestrates playback: it owns the session state machine,
// applies transport commands, and wires decoder, buffer, sink and spectrum
// tap together.
package player

import (
	"time"

	"github.com/flntfnd/auric-tui/playlist"
)

// State is the playback state machine's current state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateSeeking
	StateBuffering
	StateErrored
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateSeeking:
		return "Seeking"
	case StateBuffering:
		return "Buffering"
	case StateErrored:
		return "Error"
	default:
		return "Stopped"
	}
}

// Session is a read-only snapshot of the playback state, published by the
// controller at safe points between processing cycles. Readers poll it at
// their own cadence; the controller never hands out live state.
type Session struct {
	TrackIndex int
	Track      playlist.Track
	Position   time.Duration
	Duration   time.Duration
	State      State
	Volume     float64 // control value, 0..1, before the perceptual curve
	Repeat     playlist.RepeatMode
	Shuffle    bool
	SpectrumOn bool
	Err        error // set while Errored; requires explicit restart
}
