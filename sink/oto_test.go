package sink

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flntfnd/auric-tui/audio"
)

// stubSource hands out a fixed batch sequence.
type stubSource struct {
	batches  []audio.Batch
	recycled int
}

func (s *stubSource) Pop() (audio.Batch, bool) {
	if len(s.batches) == 0 {
		return audio.Batch{}, false
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, true
}

func (s *stubSource) Recycle(audio.Batch) { s.recycled++ }

func batchOf(samples ...[2]float64) audio.Batch {
	return audio.Batch{Samples: samples, N: len(samples)}
}

// pcm mirrors the sink's float-to-int16 conversion.
func pcm(v float64) int16 {
	return int16(v * math.MaxInt16)
}

func readFrames(t *testing.T, o *Oto, frames int) []int16 {
	t.Helper()
	p := make([]byte, frames*bytesPerFrame)
	n, err := o.Read(p)
	require.NoError(t, err)
	require.Equal(t, len(p), n, "the device read is always fully satisfied")

	out := make([]int16, frames*2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return out
}

func startWith(o *Oto, src BatchSource) {
	o.src.Store(&sourceBox{src: src})
}

func TestReadConvertsToInt16LE(t *testing.T) {
	o := NewOto()
	src := &stubSource{batches: []audio.Batch{
		batchOf([2]float64{0, 0.5}, [2]float64{-0.5, 1}),
	}}
	startWith(o, src)

	got := readFrames(t, o, 2)
	assert.Equal(t, int16(0), got[0])
	assert.Equal(t, int16(math.MaxInt16/2), got[1])
	assert.Equal(t, int16(-math.MaxInt16/2), got[2])
	assert.Equal(t, int16(math.MaxInt16), got[3])

	assert.EqualValues(t, 2, o.Played())
	assert.Zero(t, o.Underruns())
	assert.Equal(t, 1, src.recycled)
}

func TestReadClampsOutOfRangeSamples(t *testing.T) {
	o := NewOto()
	startWith(o, &stubSource{batches: []audio.Batch{
		batchOf([2]float64{2.5, -3}),
	}})

	got := readFrames(t, o, 1)
	assert.Equal(t, int16(math.MaxInt16), got[0])
	assert.Equal(t, int16(-math.MaxInt16), got[1])
}

func TestReadSilenceWithoutSource(t *testing.T) {
	o := NewOto()

	got := readFrames(t, o, 4)
	for _, v := range got {
		assert.Zero(t, v)
	}
	assert.Zero(t, o.Played())
	assert.Zero(t, o.Underruns(), "an unstarted sink is not underrunning")
}

func TestReadUnderrunFillsSilence(t *testing.T) {
	o := NewOto()
	startWith(o, &stubSource{})

	got := readFrames(t, o, 4)
	for _, v := range got {
		assert.Zero(t, v)
	}
	assert.Zero(t, o.Played())
	assert.EqualValues(t, 1, o.Underruns(), "one underrun per starved read")

	readFrames(t, o, 4)
	assert.EqualValues(t, 2, o.Underruns())
}

func TestReadSpansBatchBoundaries(t *testing.T) {
	o := NewOto()
	src := &stubSource{batches: []audio.Batch{
		batchOf([2]float64{0.1, 0.1}, [2]float64{0.2, 0.2}, [2]float64{0.3, 0.3}),
		batchOf([2]float64{0.4, 0.4}),
	}}
	startWith(o, src)

	readFrames(t, o, 2)
	got := readFrames(t, o, 2)

	// Second read finishes the first batch and starts the next.
	assert.Equal(t, pcm(0.3), got[0])
	assert.Equal(t, pcm(0.4), got[2])
	assert.EqualValues(t, 4, o.Played())
	assert.Equal(t, 2, src.recycled)
}

func TestFlushDropsPendingBatch(t *testing.T) {
	o := NewOto()
	src := &stubSource{batches: []audio.Batch{
		batchOf([2]float64{0.9, 0.9}, [2]float64{0.9, 0.9}, [2]float64{0.9, 0.9}),
		batchOf([2]float64{0.1, 0.1}),
	}}
	startWith(o, src)

	readFrames(t, o, 1) // leaves two frames pending
	o.Flush()
	got := readFrames(t, o, 1)

	assert.Equal(t, pcm(0.1), got[0], "pending audio is discarded on flush")
	assert.Equal(t, 2, src.recycled)
}

func TestOpenRejectsImpossibleFormats(t *testing.T) {
	o := NewOto()

	_, err := o.Open(audio.Format{SampleRate: 0, Channels: 2})
	assert.ErrorIs(t, err, audio.ErrFormatNegotiationFailed)

	_, err = o.Open(audio.Format{SampleRate: 44100, Channels: 6})
	assert.ErrorIs(t, err, audio.ErrFormatNegotiationFailed)
}

func TestStartBeforeOpen(t *testing.T) {
	o := NewOto()
	err := o.Start(&stubSource{})
	assert.ErrorIs(t, err, audio.ErrDeviceUnavailable)
}

func TestCloseUnopened(t *testing.T) {
	assert.NoError(t, NewOto().Close())
}
