// Package spectrum computes the frequency visualization from a read-only
// tap of the playback stream, independently of the audio path's timing.
package spectrum

import "sync"

// Tap is a fixed-size ring of mono-mixed samples fed by the playback
// pipeline. Feeding never blocks and old samples are overwritten, so the
// audio path sees no backpressure regardless of analyzer speed.
type Tap struct {
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap creates a tap holding the last size samples.
func NewTap(size int) *Tap {
	return &Tap{
		buf:  make([]float64, size),
		size: size,
	}
}

// Feed mixes n stereo frames down to mono and appends them to the ring.
func (t *Tap) Feed(samples [][2]float64, n int) {
	t.mu.Lock()
	for i := range n {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
}

// Samples copies the most recent n samples in chronological order.
func (t *Tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	out := make([]float64, n)
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
	return out
}

// Clear zeroes the ring, used when playback stops.
func (t *Tap) Clear() {
	t.mu.Lock()
	clear(t.buf)
	t.pos = 0
	t.mu.Unlock()
}
