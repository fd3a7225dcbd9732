package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTapMixesToMono(t *testing.T) {
	tap := NewTap(8)
	tap.Feed([][2]float64{{1, 0}, {0, 1}, {0.5, 0.5}}, 3)

	got := tap.Samples(3)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, got)
}

func TestTapKeepsNewestOnWrap(t *testing.T) {
	tap := NewTap(4)
	frames := make([][2]float64, 6)
	for i := range frames {
		v := float64(i + 1)
		frames[i] = [2]float64{v, v}
	}
	tap.Feed(frames, len(frames))

	got := tap.Samples(4)
	assert.Equal(t, []float64{3, 4, 5, 6}, got)

	// Asking for more than the ring holds caps at the ring size.
	assert.Len(t, tap.Samples(100), 4)
}

func TestTapPartialFeed(t *testing.T) {
	tap := NewTap(8)
	frames := [][2]float64{{1, 1}, {2, 2}, {9, 9}}
	tap.Feed(frames, 2) // third frame is past the batch's fill mark

	got := tap.Samples(2)
	assert.Equal(t, []float64{1, 2}, got)
}

func TestTapClear(t *testing.T) {
	tap := NewTap(4)
	tap.Feed([][2]float64{{1, 1}, {1, 1}}, 2)
	tap.Clear()

	assert.Equal(t, []float64{0, 0, 0, 0}, tap.Samples(4))
}
