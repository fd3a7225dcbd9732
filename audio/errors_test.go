package audio

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	for _, err := range []error{ErrUnsupportedFormat, ErrCorruptStream, ErrTrackMissing} {
		assert.True(t, IsTrackError(err), "%v", err)
		assert.False(t, IsDeviceError(err), "%v", err)
	}
	for _, err := range []error{ErrDeviceUnavailable, ErrFormatNegotiationFailed} {
		assert.True(t, IsDeviceError(err), "%v", err)
		assert.False(t, IsTrackError(err), "%v", err)
	}
	assert.False(t, IsTrackError(errors.New("other")))
	assert.False(t, IsDeviceError(nil))
}

func TestErrorClassificationSeesWrapped(t *testing.T) {
	err := fmt.Errorf("open /tmp/x.mp3: %w", ErrTrackMissing)
	assert.True(t, IsTrackError(err))
}

func TestFormatConversions(t *testing.T) {
	f := Format{SampleRate: beep.SampleRate(44100), Channels: 2}
	assert.Equal(t, time.Second, f.Duration(44100))
	assert.Equal(t, 44100, f.Frames(time.Second))
	assert.Equal(t, 22050, f.Frames(500*time.Millisecond))
}
