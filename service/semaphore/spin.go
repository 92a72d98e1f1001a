// Package semaphore provides counting semaphores for cooperative tasks.
//
// Both semaphores are taken from inside a task function through its
// scheduler.Frame. Take returns scheduler.Suspended while the unit is not
// available; the caller returns that result unchanged and calls Take again
// with the same marker when it is resumed:
//
//	switch f.Resume() {
//	case 0, 1:
//		if r := sem.Take(f, 1); r != scheduler.Success {
//			return r
//		}
//	}
package semaphore

import "github.com/viant/flightcore/service/scheduler"

// Spin is a counting semaphore whose waiters keep yielding until a unit is
// available. Waiting tasks stay in the ready queue.
type Spin struct {
	count int
}

// NewSpin creates a spin semaphore holding count units.
func NewSpin(count int) *Spin {
	return &Spin{count: count}
}

// TryTake takes a unit if one is available.
func (s *Spin) TryTake() bool {
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

// Take takes a unit or yields at marker m.
func (s *Spin) Take(f *scheduler.Frame, m scheduler.Marker) scheduler.Result {
	if s.TryTake() {
		return scheduler.Success
	}
	return f.Yield(m)
}

// Give returns a unit.
func (s *Spin) Give() {
	s.count++
}

// Count returns the available units.
func (s *Spin) Count() int {
	return s.count
}
