package player

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flntfnd/auric-tui/spectrum"
)

func TestVolumeCurveEndpoints(t *testing.T) {
	assert.Zero(t, VolumeCurve(0))
	assert.Equal(t, 1.0, VolumeCurve(1))
	assert.Zero(t, VolumeCurve(-3), "out-of-range input clamps")
	assert.Equal(t, 1.0, VolumeCurve(7))
}

func TestVolumeCurveMonotone(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		v := VolumeCurve(float64(i) / 100)
		assert.Greater(t, v, prev, "curve must rise at control %d%%", i)
		prev = v
	}
}

func TestVolumeCurveFavorsQuietEnd(t *testing.T) {
	// The exponential shape puts most of the amplitude range in the top
	// half of the control.
	assert.Less(t, VolumeCurve(0.5), 0.5)
}

type constStreamer struct {
	v float64
	n int
}

func (s *constStreamer) Stream(samples [][2]float64) (int, bool) {
	n := min(len(samples), s.n)
	for i := range n {
		samples[i] = [2]float64{s.v, s.v}
	}
	s.n -= n
	return n, n > 0
}

func (s *constStreamer) Err() error { return nil }

func TestGainStageScalesSamples(t *testing.T) {
	var gain atomic.Uint64
	gain.Store(math.Float64bits(0.25))
	g := &gainStage{s: &constStreamer{v: 0.8, n: 1000}, gain: &gain}

	buf := make([][2]float64, 4)
	n, ok := g.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 4, n)
	for i := range n {
		assert.InDelta(t, 0.2, buf[i][0], 1e-12)
		assert.InDelta(t, 0.2, buf[i][1], 1e-12)
	}

	// Volume changes apply on the next call without a rebuild.
	gain.Store(math.Float64bits(1.0))
	g.Stream(buf)
	assert.InDelta(t, 0.8, buf[0][0], 1e-12)
}

func TestTapStageFeedsSpectrum(t *testing.T) {
	tap := spectrum.NewTap(16)
	ts := &tapStage{s: &constStreamer{v: 0.5, n: 4}, tap: tap}

	buf := make([][2]float64, 4)
	n, _ := ts.Stream(buf)
	require.Equal(t, 4, n)

	got := tap.Samples(4)
	for _, v := range got {
		assert.InDelta(t, 0.5, v, 1e-12)
	}
}
