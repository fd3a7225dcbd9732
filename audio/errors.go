package audio

import "errors"

// Error taxonomy for the playback core. Track errors are recoverable by
// skipping to the next queue entry; device errors end the session until the
// user restarts playback explicitly.
var (
	ErrUnsupportedFormat       = errors.New("unsupported audio format")
	ErrCorruptStream           = errors.New("corrupt audio stream")
	ErrSeekUnsupported         = errors.New("stream does not support seeking")
	ErrTrackMissing            = errors.New("track file missing or unreadable")
	ErrBufferUnderrun          = errors.New("playback buffer underrun")
	ErrDeviceUnavailable       = errors.New("audio device unavailable")
	ErrFormatNegotiationFailed = errors.New("audio format negotiation failed")
)

// IsTrackError reports whether err is a per-track decode failure that the
// controller should log and skip past rather than surface.
func IsTrackError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrCorruptStream) ||
		errors.Is(err, ErrTrackMissing)
}

// IsDeviceError reports whether err is fatal to the playback session.
func IsDeviceError(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable) ||
		errors.Is(err, ErrFormatNegotiationFailed)
}
