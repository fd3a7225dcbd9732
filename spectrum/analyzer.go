package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	minFreq = 20.0
	maxFreq = 20000.0

	// Smoothing factor for band decay; attack is instant.
	smoothing = 0.7
)

// Frame is one spectrum snapshot: normalized magnitudes in [0,1], one per
// band, low frequencies first. Frames carry no history; the latest one
// replaces the previous.
type Frame struct {
	Bins []float64
}

// Analyzer turns a window of raw samples into banded magnitudes. It applies
// a Hann window, runs a real FFT, groups bins into logarithmically spaced
// bands, maps them onto a -60..0 dB scale, and smooths with fast attack
// and slow decay. Not safe for concurrent use; the Monitor owns it.
type Analyzer struct {
	fftSize    int
	sampleRate float64
	window     []float64 // precomputed Hann coefficients
	buf        []float64 // reused FFT input
	smoothed   []float64
	bandLo     []int // fft bin range per band; -1 when past Nyquist
	bandHi     []int
}

// NewAnalyzer creates an analyzer producing bands magnitude bins from
// fftSize-sample windows at the given sample rate. fftSize must be a
// power of two.
func NewAnalyzer(fftSize, bands int, sampleRate float64) *Analyzer {
	a := &Analyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		window:     make([]float64, fftSize),
		buf:        make([]float64, fftSize),
		smoothed:   make([]float64, bands),
		bandLo:     make([]int, bands),
		bandHi:     make([]int, bands),
	}
	for i := range fftSize {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	// Logarithmic band edges give low frequencies, where music lives,
	// most of the resolution. The band range tops out at 20 kHz; at low
	// sample rates the bands past Nyquist have no bins and stay silent.
	half := fftSize / 2
	binHz := sampleRate / float64(fftSize)
	for b := range bands {
		lo := int(bandFreq(b, bands) / binHz)
		hi := int(bandFreq(b+1, bands) / binHz)
		if lo < 1 {
			lo = 1
		}
		if lo >= half {
			a.bandLo[b] = -1
			a.bandHi[b] = -1
			continue
		}
		if hi >= half {
			hi = half - 1
		}
		if hi < lo {
			hi = lo
		}
		a.bandLo[b] = lo
		a.bandHi[b] = hi
	}
	return a
}

// bandFreq maps a band index to its lower edge frequency.
func bandFreq(band, bands int) float64 {
	t := float64(band) / float64(bands)
	return minFreq * math.Pow(maxFreq/minFreq, t)
}

// Bands returns the number of output bins per frame.
func (a *Analyzer) Bands() int { return len(a.smoothed) }

// WindowSize returns the number of input samples consumed per frame.
func (a *Analyzer) WindowSize() int { return a.fftSize }

// Analyze computes the next frame from samples. Short input is zero-padded;
// empty input decays the previous frame toward silence.
func (a *Analyzer) Analyze(samples []float64) Frame {
	bins := make([]float64, len(a.smoothed))

	if len(samples) == 0 {
		for b := range a.smoothed {
			a.smoothed[b] *= smoothing
			bins[b] = a.smoothed[b]
		}
		return Frame{Bins: bins}
	}

	clear(a.buf)
	copy(a.buf, samples)
	for i := range a.fftSize {
		a.buf[i] *= a.window[i]
	}

	out := fft.FFTReal(a.buf)
	norm := math.Sqrt(float64(a.fftSize))

	for b := range bins {
		var mag float64
		if lo, hi := a.bandLo[b], a.bandHi[b]; lo >= 0 {
			var sum float64
			for i := lo; i <= hi; i++ {
				sum += cmplx.Abs(out[i]) / norm
			}
			mag = sum / float64(hi-lo+1)
		}

		// Map -60..0 dB to 0..1.
		if mag > 0 {
			db := 20 * math.Log10(mag)
			bins[b] = math.Max(0, math.Min(1, (db+60)/60))
		}

		if bins[b] > a.smoothed[b] {
			a.smoothed[b] = bins[b]
		} else {
			a.smoothed[b] = a.smoothed[b]*smoothing + bins[b]*(1-smoothing)
		}
		bins[b] = a.smoothed[b]
	}

	return Frame{Bins: bins}
}

// Reset clears the smoothing state so the next frame starts from silence.
func (a *Analyzer) Reset() {
	clear(a.smoothed)
}
