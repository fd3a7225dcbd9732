package player

import "time"

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdPause
	cmdStop
	cmdSeek
	cmdNext
	cmdPrev
	cmdSetVolume
	cmdToggleShuffle
	cmdCycleRepeat
	cmdToggleSpectrum
)

// Command is a transport instruction for the controller. The UI builds
// commands with the constructors below and submits them through Do; it
// never touches controller state directly.
type Command struct {
	kind   commandKind
	index  int
	pos    time.Duration
	volume float64
}

// Play starts playback of the queue entry at index.
func Play(index int) Command { return Command{kind: cmdPlay, index: index} }

// Resume resumes the current track, or starts the queue's current entry
// when stopped. A no-op while already playing.
func Resume() Command { return Command{kind: cmdPlay, index: -1} }

// Pause suspends playback. A no-op while already paused.
func Pause() Command { return Command{kind: cmdPause} }

// Stop ends the session and discards the in-flight decoder.
func Stop() Command { return Command{kind: cmdStop} }

// Seek moves the current track to pos, clamped to its bounds.
func Seek(pos time.Duration) Command { return Command{kind: cmdSeek, pos: pos} }

// Next advances to the next entry in play order.
func Next() Command { return Command{kind: cmdNext} }

// Prev restarts the current track when more than a few seconds in,
// otherwise steps back through the play order.
func Prev() Command { return Command{kind: cmdPrev} }

// SetVolume sets the volume control value, clamped to [0,1].
func SetVolume(v float64) Command { return Command{kind: cmdSetVolume, volume: v} }

// ToggleShuffle flips the queue's shuffle mode.
func ToggleShuffle() Command { return Command{kind: cmdToggleShuffle} }

// CycleRepeat cycles the repeat mode Off -> All -> One.
func CycleRepeat() Command { return Command{kind: cmdCycleRepeat} }

// ToggleSpectrum enables or disables spectrum computation at runtime.
func ToggleSpectrum() Command { return Command{kind: cmdToggleSpectrum} }
