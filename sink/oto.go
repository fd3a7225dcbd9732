package sink

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/flntfnd/auric-tui/audio"
)

const bytesPerFrame = 4 // int16 LE, stereo

// Oto plays through the platform device via oto v3. The oto player pulls
// bytes from Read on a device-paced thread; that path only moves
// pre-decoded samples and touches nothing but atomics and the ring.
type Oto struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	format audio.Format

	src atomic.Pointer[sourceBox]

	played    atomic.Int64
	underruns atomic.Int64
	flush     atomic.Bool

	// Read-side state, touched only by the device thread.
	pending    audio.Batch
	pendingOff int
	hasPending bool
}

type sourceBox struct{ src BatchSource }

// NewOto creates an unopened oto sink.
func NewOto() *Oto {
	return &Oto{}
}

func (o *Oto) Open(want audio.Format) (audio.Format, error) {
	if want.SampleRate <= 0 || want.Channels < 1 || want.Channels > 2 {
		return audio.Format{}, fmt.Errorf("%w: %d Hz, %d channels",
			audio.ErrFormatNegotiationFailed, want.SampleRate, want.Channels)
	}

	// The pipeline is stereo end to end; mono decoders are widened
	// upstream, so the device is always opened with two channels.
	granted := audio.Format{SampleRate: want.SampleRate, Channels: 2}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(granted.SampleRate),
		ChannelCount: granted.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return audio.Format{}, fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}
	<-ready

	o.mu.Lock()
	o.ctx = ctx
	o.format = granted
	o.mu.Unlock()
	return granted, nil
}

func (o *Oto) Start(src BatchSource) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctx == nil {
		return fmt.Errorf("%w: sink not open", audio.ErrDeviceUnavailable)
	}
	o.src.Store(&sourceBox{src: src})
	if o.player == nil {
		o.player = o.ctx.NewPlayer(o)
		o.player.Play()
	}
	return nil
}

func (o *Oto) Pause(paused bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return
	}
	if paused {
		o.player.Pause()
	} else {
		o.player.Play()
	}
}

func (o *Oto) Played() int64 { return o.played.Load() }
func (o *Oto) Underruns() int64 { return o.underruns.Load() }

func (o *Oto) Flush() {
	o.flush.Store(true)
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			return fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
		}
		o.player = nil
	}
	return nil
}

// Read is the device pull path. It converts buffered batches to 16-bit
// little-endian PCM and fills any shortfall with silence, counting one
// underrun per starved read.
func (o *Oto) Read(p []byte) (int, error) {
	box := o.src.Load()
	if box == nil {
		clear(p)
		return len(p), nil
	}

	if o.flush.Swap(false) && o.hasPending {
		box.src.Recycle(o.pending)
		o.hasPending = false
		o.pendingOff = 0
	}

	frames := len(p) / bytesPerFrame
	written := 0
	starved := false

	for written < frames {
		if !o.hasPending {
			b, ok := box.src.Pop()
			if !ok {
				starved = true
				break
			}
			o.pending = b
			o.pendingOff = 0
			o.hasPending = true
		}

		n := min(o.pending.N-o.pendingOff, frames-written)
		for i := range n {
			s := o.pending.Samples[o.pendingOff+i]
			off := (written + i) * bytesPerFrame
			putSample(p[off:], s[0])
			putSample(p[off+2:], s[1])
		}
		written += n
		o.pendingOff += n

		if o.pendingOff >= o.pending.N {
			box.src.Recycle(o.pending)
			o.hasPending = false
			o.pendingOff = 0
		}
	}

	if written < frames {
		clear(p[written*bytesPerFrame:])
		if starved {
			o.underruns.Add(1)
		}
	}
	o.played.Add(int64(written))

	return len(p), nil
}

// putSample writes one float64 sample as clamped little-endian int16.
func putSample(p []byte, s float64) {
	v := int16(math.Max(-1, math.Min(1, s)) * math.MaxInt16)
	p[0] = byte(v)
	p[1] = byte(v >> 8)
}
