package player

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/flntfnd/auric-tui/audio"
	"github.com/flntfnd/auric-tui/buffer"
	"github.com/flntfnd/auric-tui/decode"
	"github.com/flntfnd/auric-tui/playlist"
	"github.com/flntfnd/auric-tui/sink"
	"github.com/flntfnd/auric-tui/spectrum"
)

// pollInterval paces the control loop's housekeeping: position updates,
// underrun accounting and end-of-track detection.
const pollInterval = 50 * time.Millisecond

// restartThreshold is how far into a track Prev restarts it instead of
// stepping back through the queue.
const restartThreshold = 3 * time.Second

// openDecoder is swapped out in tests.
var openDecoder = decode.Open

// Config tunes the playback pipeline.
type Config struct {
	SampleRate        int           // device output rate
	RingCapacity      int           // ring bound, in batches
	LowWater          int           // refill threshold leaving Buffering
	BatchSize         int           // frames per batch
	ResampleQuality   int           // beep.Resample quality, 1..64
	StallTimeout      time.Duration // starved this long means decode failure
	UnderrunTolerance int64         // starved device reads per poll window
	InitialVolume     float64
	SpectrumFFTSize   int
	SpectrumBands     int
	SpectrumFPS       int
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.RingCapacity <= 0 {
		c.RingCapacity = 32
	}
	if c.LowWater <= 0 {
		c.LowWater = c.RingCapacity / 4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1024
	}
	if c.ResampleQuality <= 0 {
		c.ResampleQuality = 4
	}
	if c.StallTimeout <= 0 {
		c.StallTimeout = 5 * time.Second
	}
	if c.UnderrunTolerance <= 0 {
		c.UnderrunTolerance = 3
	}
	if c.InitialVolume <= 0 {
		c.InitialVolume = 0.8
	}
	if c.SpectrumFFTSize <= 0 {
		c.SpectrumFFTSize = 2048
	}
	if c.SpectrumBands <= 0 {
		c.SpectrumBands = 32
	}
	if c.SpectrumFPS <= 0 {
		c.SpectrumFPS = 30
	}
	return c
}

// producerEvent reports why a decode producer ended: err is nil at a clean
// end of stream.
type producerEvent struct {
	err error
}

// trackRun is the per-track decode session: one decoder, one producer
// goroutine, one fresh ring. Abandoning a run means cancelling its context
// and dropping the ring; a stalled producer is never waited on.
type trackRun struct {
	dec        decode.Decoder
	ring       *buffer.Ring
	cancel     context.CancelFunc
	events     chan producerEvent
	base       time.Duration // track position at producer start
	playedBase int64         // sink.Played() at producer start
	duration   time.Duration
	eos        bool
	starvedAt  time.Time // when Buffering began; zero otherwise
}

// ringSwitch is the sink's view of the buffer. Swapping the pointer
// retargets the device to a new track's ring in one atomic store, which is
// how Stop/Seek discard buffered audio without ever blocking the device
// path.
type ringSwitch struct {
	ring atomic.Pointer[buffer.Ring]
	pool *buffer.Pool
}

func (r *ringSwitch) Pop() (audio.Batch, bool) {
	rb := r.ring.Load()
	if rb == nil {
		return audio.Batch{}, false
	}
	return rb.Pop()
}

func (r *ringSwitch) Recycle(b audio.Batch) { r.pool.Put(b) }

// Controller is the playback orchestrator. All session mutation happens on
// its single control goroutine; the UI communicates through Do and reads
// Snapshot and Spectrum.
type Controller struct {
	cfg   Config
	queue *playlist.Playlist
	out   sink.Sink
	log   *slog.Logger

	pool    *buffer.Pool
	tap     *spectrum.Tap
	monitor *spectrum.Monitor
	source  ringSwitch
	gain    atomic.Uint64

	cmds     chan Command
	done     chan struct{}
	closing  sync.Once
	wg       sync.WaitGroup
	snapshot atomic.Pointer[Session]

	// Loop-owned state below; untouched outside the control goroutine.
	state        State
	intent       State // what Seeking/Buffering resolve back to
	volume       float64
	lastErr      error
	run          *trackRun
	opened       bool
	underrunMark int64
	failStreak   int
}

// New creates a controller over the given queue and output sink. The sink
// is opened lazily on the first Play so device failures surface as an
// Errored session rather than a construction error.
func New(queue *playlist.Playlist, out sink.Sink, cfg Config, log *slog.Logger) *Controller {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}

	tap := spectrum.NewTap(cfg.SpectrumFFTSize * 2)
	analyzer := spectrum.NewAnalyzer(cfg.SpectrumFFTSize, cfg.SpectrumBands, float64(cfg.SampleRate))

	c := &Controller{
		cfg:     cfg,
		queue:   queue,
		out:     out,
		log:     log,
		pool:    buffer.NewPool(cfg.BatchSize),
		tap:     tap,
		monitor: spectrum.NewMonitor(tap, analyzer, cfg.SpectrumFPS),
		cmds:    make(chan Command, 16),
		done:    make(chan struct{}),
	}
	c.source.pool = c.pool
	c.setVolume(cfg.InitialVolume)
	c.publish()
	return c
}

// Start launches the control loop and the spectrum monitor.
func (c *Controller) Start() {
	c.monitor.Start()
	c.wg.Add(1)
	go c.loop()
}

// Close shuts the controller down and releases the device.
func (c *Controller) Close() {
	c.closing.Do(func() { close(c.done) })
	c.wg.Wait()
	c.monitor.Stop()
	if err := c.out.Close(); err != nil {
		c.log.Warn("sink close failed", "err", err)
	}
}

// Do submits a command to the control loop.
func (c *Controller) Do(cmd Command) {
	select {
	case c.cmds <- cmd:
	case <-c.done:
	}
}

// Snapshot returns the latest published session. Never nil.
func (c *Controller) Snapshot() *Session {
	return c.snapshot.Load()
}

// Spectrum returns the latest spectrum frame. Never nil.
func (c *Controller) Spectrum() *spectrum.Frame {
	return c.monitor.Latest()
}

// Queue returns the playback queue. Mutations must go through commands;
// this accessor is for read-only listing by the UI.
func (c *Controller) Queue() *playlist.Playlist { return c.queue }

func (c *Controller) loop() {
	defer c.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var events chan producerEvent
		if c.run != nil {
			events = c.run.events
		}

		select {
		case <-c.done:
			c.abandon()
			return
		case cmd := <-c.cmds:
			c.apply(cmd)
		case ev := <-events:
			c.onProducerDone(ev)
		case <-ticker.C:
			c.tick()
		}
		c.publish()
	}
}

// apply executes one command. Commands are processed strictly between
// buffer-fill cycles; they never preempt the device path.
func (c *Controller) apply(cmd Command) {
	switch cmd.kind {
	case cmdPlay:
		c.play(cmd.index)
	case cmdPause:
		if c.state == StatePlaying || c.state == StateBuffering {
			c.intent = StatePaused
			c.state = StatePaused
			c.out.Pause(true)
		}
	case cmdStop:
		c.stop()
	case cmdSeek:
		c.seek(cmd.pos)
	case cmdNext:
		c.skip(func() (playlist.Track, bool) { return c.queue.Skip() })
	case cmdPrev:
		c.prev()
	case cmdSetVolume:
		c.setVolume(cmd.volume)
	case cmdToggleShuffle:
		c.queue.ToggleShuffle()
	case cmdCycleRepeat:
		c.queue.CycleRepeat()
	case cmdToggleSpectrum:
		c.monitor.SetEnabled(!c.monitor.Enabled())
	}
}

func (c *Controller) play(index int) {
	if index >= 0 {
		c.queue.SetIndex(index)
		c.lastErr = nil
		c.abandon()
		c.load(0, StatePlaying)
		return
	}

	switch c.state {
	case StatePaused:
		c.intent = StatePlaying
		c.state = StatePlaying
		c.underrunMark = c.out.Underruns()
		c.out.Pause(false)
	case StateStopped, StateErrored:
		// Explicit restart clears a device error.
		c.lastErr = nil
		c.load(0, StatePlaying)
	}
}

func (c *Controller) stop() {
	c.abandon()
	c.state = StateStopped
	c.intent = StateStopped
	c.lastErr = nil
	c.out.Pause(true)
	c.tap.Clear()
}

// seek reconciles against the decoder's actual resulting position: the run
// restarts with a fresh decoder at the clamped target and the old one is
// abandoned, so a slow or stale producer can never hold the seek hostage.
func (c *Controller) seek(pos time.Duration) {
	if c.run == nil {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if c.run.duration > 0 && pos >= c.run.duration {
		// Seeking at or past the end resolves like track exhaustion.
		c.endOfTrack()
		return
	}

	intent := c.intent
	c.state = StateSeeking
	c.publish()

	c.abandon()
	c.load(pos, intent)
}

func (c *Controller) prev() {
	if c.run != nil && c.position() > restartThreshold {
		c.seek(0)
		return
	}
	c.skip(func() (playlist.Track, bool) { return c.queue.Prev() })
}

// skip moves the queue with the given step and plays the result, keeping
// the paused intent if the user was paused.
func (c *Controller) skip(step func() (playlist.Track, bool)) {
	intent := c.intent
	if intent != StatePaused {
		intent = StatePlaying
	}
	c.abandon()
	if _, ok := step(); !ok {
		c.state = StateStopped
		c.intent = StateStopped
		c.out.Pause(true)
		c.tap.Clear()
		return
	}
	c.load(0, intent)
}

func (c *Controller) setVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	c.gain.Store(math.Float64bits(VolumeCurve(v)))
}

// load opens the current queue entry, seeks to at, and starts a fresh
// producer feeding a fresh ring. Decode failures trigger auto-advance;
// device failures transition to Errored.
func (c *Controller) load(at time.Duration, intent State) {
	track, idx := c.queue.Current()
	if idx < 0 {
		c.state = StateStopped
		c.intent = StateStopped
		return
	}
	if !c.ensureSink() {
		return
	}

	dec, err := openDecoder(track.Path)
	if err != nil {
		c.trackFailed(track, err)
		return
	}
	c.failStreak = 0

	base := time.Duration(0)
	if at > 0 {
		base, err = dec.Seek(at)
		if err != nil {
			c.log.Warn("seek failed", "track", track.Path, "err", err)
			base = dec.Position()
		}
	}

	ring := buffer.New(c.cfg.RingCapacity, c.cfg.LowWater, c.pool)
	ctx, cancel := context.WithCancel(context.Background())
	run := &trackRun{
		dec:      dec,
		ring:     ring,
		cancel:   cancel,
		events:   make(chan producerEvent, 1),
		base:     base,
		duration: dec.Len(),
	}

	go c.produce(ctx, run, c.pipeline(dec))

	// The consumption base must be on record before the device can pull
	// from the new ring, or the first frames go missing from position.
	c.out.Flush()
	run.playedBase = c.out.Played()
	c.underrunMark = c.out.Underruns()
	c.source.ring.Store(ring)

	c.run = run
	c.state = intent
	c.intent = intent
	c.out.Pause(intent != StatePlaying)

	c.log.Info("track loaded",
		"track", track.DisplayName(),
		"index", idx,
		"start", base,
		"duration", run.duration)
}

// pipeline builds the per-track streamer chain:
// decoder -> resample -> volume -> spectrum tap.
func (c *Controller) pipeline(dec decode.Decoder) beep.Streamer {
	var s beep.Streamer = dec
	if f := dec.Format(); int(f.SampleRate) != c.cfg.SampleRate {
		s = beep.Resample(c.cfg.ResampleQuality, f.SampleRate, beep.SampleRate(c.cfg.SampleRate), s)
	}
	s = &gainStage{s: s, gain: &c.gain}
	s = &tapStage{s: s, tap: c.tap}
	return s
}

// produce decodes batches into the run's ring until the stream ends, the
// decoder fails, or the run is cancelled. It owns the decoder's lifetime.
func (c *Controller) produce(ctx context.Context, run *trackRun, s beep.Streamer) {
	defer run.dec.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		b := c.pool.Get()
		n, ok := s.Stream(b.Samples)
		b.N = n
		if n > 0 {
			if err := run.ring.Push(ctx, b); err != nil {
				return
			}
		} else {
			c.pool.Put(b)
		}

		if !ok {
			select {
			case run.events <- producerEvent{err: run.dec.Err()}:
			case <-ctx.Done():
			}
			return
		}
	}
}

func (c *Controller) onProducerDone(ev producerEvent) {
	if c.run == nil {
		return
	}
	if ev.err != nil {
		track, _ := c.queue.Current()
		c.abandon()
		c.trackFailed(track, ev.err)
		return
	}
	// Clean end of stream: let the ring and device drain, then resolve
	// end-of-track from tick.
	c.run.eos = true
}

// tick does the periodic housekeeping: position snapshots (via publish),
// underrun-driven Buffering transitions with hysteresis, decode-stall
// detection, and end-of-track resolution.
func (c *Controller) tick() {
	if c.run == nil {
		return
	}

	if c.run.eos && c.run.ring.Len() == 0 {
		c.endOfTrack()
		return
	}

	switch c.state {
	case StatePlaying:
		delta := c.out.Underruns() - c.underrunMark
		c.underrunMark = c.out.Underruns()
		if delta > c.cfg.UnderrunTolerance && c.run.ring.Len() == 0 {
			c.state = StateBuffering
			c.run.starvedAt = time.Now()
			c.log.Debug("buffer underrun", "starved_reads", delta)
		}
	case StateBuffering:
		if c.run.ring.Len() >= c.run.ring.LowWater() {
			c.state = c.intent
			c.run.starvedAt = time.Time{}
			c.underrunMark = c.out.Underruns()
		} else if time.Since(c.run.starvedAt) > c.cfg.StallTimeout {
			// The producer is wedged; treat it as a decode failure
			// and abandon it rather than waiting.
			track, _ := c.queue.Current()
			c.abandon()
			c.trackFailed(track, fmt.Errorf("%w: decode stalled", audio.ErrCorruptStream))
		}
	}
}

func (c *Controller) endOfTrack() {
	intent := c.intent
	c.abandon()

	if _, ok := c.queue.Next(); !ok {
		c.state = StateStopped
		c.intent = StateStopped
		c.out.Pause(true)
		c.tap.Clear()
		return
	}
	if intent != StatePaused {
		intent = StatePlaying
	}
	c.load(0, intent)
}

// trackFailed handles a per-track decode failure: log, count, and advance
// past it. Device failures instead end the session until the user
// explicitly restarts.
func (c *Controller) trackFailed(track playlist.Track, err error) {
	if audio.IsDeviceError(err) {
		c.abandon()
		c.state = StateErrored
		c.intent = StateErrored
		c.lastErr = err
		c.out.Pause(true)
		c.log.Error("device failure", "err", err)
		return
	}

	c.log.Warn("skipping track", "track", track.Path, "err", err)
	c.failStreak++
	if c.queue.Len() == 0 || c.failStreak >= c.queue.Len() {
		// Every queue entry failed in a row; stop instead of spinning.
		c.state = StateStopped
		c.intent = StateStopped
		c.out.Pause(true)
		return
	}
	if _, ok := c.queue.Skip(); !ok {
		c.state = StateStopped
		c.intent = StateStopped
		c.out.Pause(true)
		return
	}
	c.load(0, StatePlaying)
}

func (c *Controller) ensureSink() bool {
	if c.opened {
		return true
	}
	want := audio.Format{SampleRate: beep.SampleRate(c.cfg.SampleRate), Channels: 2}
	if _, err := c.out.Open(want); err != nil {
		c.state = StateErrored
		c.intent = StateErrored
		c.lastErr = err
		c.log.Error("sink open failed", "err", err)
		return false
	}
	if err := c.out.Start(&c.source); err != nil {
		c.state = StateErrored
		c.intent = StateErrored
		c.lastErr = err
		c.log.Error("sink start failed", "err", err)
		return false
	}
	c.opened = true
	return true
}

// abandon cancels the current run and retargets the device at nothing.
// The producer exits on its own and closes the decoder; if it is wedged
// inside a decode call it is simply left behind.
func (c *Controller) abandon() {
	if c.run == nil {
		return
	}
	c.run.cancel()
	c.source.ring.Store(nil)
	c.run.ring.Drain()
	c.out.Flush()
	c.run = nil
}

// position derives the audible position from device consumption: frames
// played since the run began, at the device rate, on top of the seek base.
func (c *Controller) position() time.Duration {
	if c.run == nil {
		return 0
	}
	delta := c.out.Played() - c.run.playedBase
	if delta < 0 {
		delta = 0
	}
	pos := c.run.base + beep.SampleRate(c.cfg.SampleRate).D(int(delta))
	if c.run.duration > 0 && pos > c.run.duration {
		pos = c.run.duration
	}
	return pos
}

func (c *Controller) publish() {
	track, idx := c.queue.Current()
	duration := track.Duration
	if c.run != nil {
		duration = c.run.duration
	}
	c.snapshot.Store(&Session{
		TrackIndex: idx,
		Track:      track,
		Position:   c.position(),
		Duration:   duration,
		State:      c.state,
		Volume:     c.volume,
		Repeat:     c.queue.Repeat(),
		Shuffle:    c.queue.Shuffled(),
		SpectrumOn: c.monitor.Enabled(),
		Err:        c.lastErr,
	})
}
