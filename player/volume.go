package player

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/flntfnd/auric-tui/spectrum"
)

// volumeCurveK shapes the control-to-amplitude mapping. Higher values give
// finer control at the quiet end of the range.
const volumeCurveK = 4.0

// VolumeCurve maps the 0..1 volume control to an amplitude scale using an
// exponential approximation of perceived loudness. It is monotonic
// non-decreasing and hits 0 and 1 exactly at the endpoints.
func VolumeCurve(v float64) float64 {
	v = math.Max(0, math.Min(1, v))
	return (math.Exp(volumeCurveK*v) - 1) / (math.Exp(volumeCurveK) - 1)
}

// gainStage scales samples by the current amplitude. It sits after decode
// and before buffering, so the spectrum tap hears exactly what the device
// will play. The amplitude is read atomically each call; volume changes
// apply on the next batch without rebuilding the pipeline.
type gainStage struct {
	s    beep.Streamer
	gain *atomic.Uint64 // math.Float64bits of the amplitude
}

func (g *gainStage) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.s.Stream(samples)
	amp := math.Float64frombits(g.gain.Load())
	if amp != 1 {
		for i := range n {
			samples[i][0] *= amp
			samples[i][1] *= amp
		}
	}
	return n, ok
}

func (g *gainStage) Err() error { return g.s.Err() }

// tapStage copies post-volume samples into the spectrum tap on the way to
// the buffer. Feeding the tap never blocks.
type tapStage struct {
	s   beep.Streamer
	tap *spectrum.Tap
}

func (t *tapStage) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.tap.Feed(samples, n)
	return n, ok
}

func (t *tapStage) Err() error { return t.s.Err() }
