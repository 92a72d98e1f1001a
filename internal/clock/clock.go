package clock

import (
	"sync/atomic"
	"time"
)

// Tick is an opaque monotonic time unit.
type Tick uint64

// Source returns a monotonically non-decreasing tick count.
type Source func() Tick

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Monotonic returns a source counting resolution-sized ticks elapsed since
// the call. A non-positive resolution counts milliseconds.
func Monotonic(resolution time.Duration) Source {
	if resolution <= 0 {
		resolution = time.Millisecond
	}
	started := Now()
	return func() Tick {
		elapsed := Now().Sub(started)
		if elapsed < 0 {
			return 0
		}
		return Tick(elapsed / resolution)
	}
}

// Manual is a tick source advanced explicitly; it is safe for concurrent use.
type Manual struct {
	now atomic.Uint64
}

// NewManual creates a manual clock starting at start.
func NewManual(start Tick) *Manual {
	m := &Manual{}
	m.now.Store(uint64(start))
	return m
}

// Now returns the current tick.
func (m *Manual) Now() Tick { return Tick(m.now.Load()) }

// Advance moves the clock forward and returns the new tick.
func (m *Manual) Advance(ticks Tick) Tick { return Tick(m.now.Add(uint64(ticks))) }

// Set moves the clock to t; going backwards is ignored.
func (m *Manual) Set(t Tick) {
	for {
		current := m.now.Load()
		if uint64(t) <= current || m.now.CompareAndSwap(current, uint64(t)) {
			return
		}
	}
}

// Source exposes the clock as a Source.
func (m *Manual) Source() Source { return m.Now }
