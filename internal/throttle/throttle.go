// Package throttle provides the admission throttle that bounds how many
// metadata fetches run at the same time.
package throttle

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Throttle is a capacity-bounded permit pool. Every successful Acquire or
// TryAcquire must be paired with exactly one Release.
type Throttle struct {
	sem      *semaphore.Weighted
	capacity int64
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New creates a Throttle with the given capacity. Values below 1 are raised to 1.
func New(capacity int) *Throttle {
	if capacity < 1 {
		capacity = 1
	}
	return &Throttle{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}
}

// Acquire blocks until a permit is available or ctx is done.
func (t *Throttle) Acquire(ctx context.Context) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire permit: %w", err)
	}
	t.track()
	return nil
}

// TryAcquire takes a permit without blocking. It reports false when the pool is
// exhausted.
func (t *Throttle) TryAcquire() bool {
	if !t.sem.TryAcquire(1) {
		return false
	}
	t.track()
	return true
}

// Release returns a permit to the pool.
func (t *Throttle) Release() {
	t.inFlight.Add(-1)
	t.sem.Release(1)
}

// Do runs fn while holding a permit. The permit is released even if fn panics.
func (t *Throttle) Do(ctx context.Context, fn func() error) error {
	if err := t.Acquire(ctx); err != nil {
		return err
	}
	defer t.Release()
	return fn()
}

// Capacity returns the maximum number of permits.
func (t *Throttle) Capacity() int {
	return int(t.capacity)
}

// InFlight returns the number of permits currently held.
func (t *Throttle) InFlight() int {
	return int(t.inFlight.Load())
}

// Peak returns the highest number of permits held at once since creation.
func (t *Throttle) Peak() int {
	return int(t.peak.Load())
}

func (t *Throttle) track() {
	n := t.inFlight.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			return
		}
	}
}
