// Package buffer provides the bounded batch queue that decouples the
// decode rate from the hardware consumption rate.
package buffer

import (
	"context"
	"sync"

	"github.com/flntfnd/auric-tui/audio"
)

// Pool recycles PCM batches between pipeline stages so the steady state
// reuses sample memory instead of growing it.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool creates a pool of batches holding size frames each.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() any {
		return audio.Batch{Samples: make([][2]float64, size)}
	}
	return p
}

// Get returns an empty batch from the pool.
func (p *Pool) Get() audio.Batch {
	b := p.pool.Get().(audio.Batch)
	b.N = 0
	return b
}

// Put returns a spent batch to the pool. Foreign-sized batches are dropped.
func (p *Pool) Put(b audio.Batch) {
	if len(b.Samples) != p.size {
		return
	}
	p.pool.Put(b)
}

// BatchSize returns the frame capacity of pooled batches.
func (p *Pool) BatchSize() int { return p.size }

// Ring is a bounded FIFO of PCM batches between one producer (decode) and
// one consumer (the output device). The producer suspends while the ring
// is full; the consumer never blocks, it reports an underrun instead.
type Ring struct {
	ch   chan audio.Batch
	pool *Pool
	low  int
}

// New creates a ring holding up to capacity batches, resuming from the
// Buffering state once occupancy climbs back above lowWater.
func New(capacity, lowWater int, pool *Pool) *Ring {
	if lowWater >= capacity {
		lowWater = capacity / 2
	}
	return &Ring{
		ch:   make(chan audio.Batch, capacity),
		pool: pool,
		low:  lowWater,
	}
}

// Push enqueues a batch, blocking while the ring is full. It returns the
// context error if the producer is cancelled while suspended.
func (r *Ring) Push(ctx context.Context, b audio.Batch) error {
	select {
	case r.ch <- b:
		return nil
	case <-ctx.Done():
		r.pool.Put(b)
		return ctx.Err()
	}
}

// Pop dequeues the oldest batch without blocking. ok is false when the
// ring is empty, which the sink reports as an underrun.
func (r *Ring) Pop() (audio.Batch, bool) {
	select {
	case b := <-r.ch:
		return b, true
	default:
		return audio.Batch{}, false
	}
}

// Recycle returns a consumed batch to the pool.
func (r *Ring) Recycle(b audio.Batch) {
	r.pool.Put(b)
}

// Drain discards all queued batches. Used on Stop and track change so a
// stale producer is never waited on.
func (r *Ring) Drain() {
	for {
		select {
		case b := <-r.ch:
			r.pool.Put(b)
		default:
			return
		}
	}
}

// Len returns the current occupancy in batches.
func (r *Ring) Len() int { return len(r.ch) }

// Cap returns the configured bound in batches.
func (r *Ring) Cap() int { return cap(r.ch) }

// LowWater returns the refill threshold for leaving the Buffering state.
func (r *Ring) LowWater() int { return r.low }
