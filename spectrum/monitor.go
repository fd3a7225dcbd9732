package spectrum

import (
	"sync"
	"sync/atomic"
	"time"
)

// Monitor runs the analyzer at a bounded cadence on its own goroutine and
// publishes the newest frame. Analysis that can't keep up simply misses
// ticks; it never queues work and never touches the audio path.
type Monitor struct {
	tap      *Tap
	analyzer *Analyzer
	interval time.Duration

	latest  atomic.Pointer[Frame]
	enabled atomic.Bool

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewMonitor ties a tap and analyzer together at the given frame rate.
// The monitor starts enabled but idle until Start is called.
func NewMonitor(tap *Tap, analyzer *Analyzer, fps int) *Monitor {
	if fps <= 0 {
		fps = 30
	}
	m := &Monitor{
		tap:      tap,
		analyzer: analyzer,
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
	}
	m.enabled.Store(true)
	m.latest.Store(&Frame{Bins: make([]float64, analyzer.Bands())})
	return m
}

// Start launches the analysis goroutine.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.loop()
}

// Stop ends the analysis goroutine and waits for it.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
	m.wg.Wait()
}

// SetEnabled toggles computation at runtime. Disabling blanks the published
// frame and stops spending CPU; the tap keeps receiving samples so a
// re-enable picks up mid-track.
func (m *Monitor) SetEnabled(on bool) {
	m.enabled.Store(on)
}

// Enabled reports whether analysis is running.
func (m *Monitor) Enabled() bool { return m.enabled.Load() }

// Latest returns the most recent frame. Never nil.
func (m *Monitor) Latest() *Frame {
	return m.latest.Load()
}

// loop is the only writer of latest, so a disable can never be overwritten
// by an analysis that was already in flight.
func (m *Monitor) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	active := true
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if !m.enabled.Load() {
				if active {
					active = false
					m.analyzer.Reset()
					m.latest.Store(&Frame{Bins: make([]float64, m.analyzer.Bands())})
				}
				continue
			}
			active = true
			frame := m.analyzer.Analyze(m.tap.Samples(m.analyzer.WindowSize()))
			m.latest.Store(&frame)
		}
	}
}
