package semaphore

import (
	"errors"

	"github.com/viant/flightcore/service/queue"
	"github.com/viant/flightcore/service/scheduler"
)

// ErrWaitersFull is reported when more tasks wait than the semaphore can track.
var ErrWaitersFull = errors.New("semaphore: waiter queue full")

// Waker wakes blocked tasks and reports whether a task is still live;
// *scheduler.Scheduler implements it.
type Waker interface {
	Wake(id scheduler.ID) error
	State(id scheduler.ID) (scheduler.State, bool)
}

type waiter struct {
	id      scheduler.ID
	granted bool
}

// Blocking is a counting semaphore whose waiters are blocked in the
// scheduler and woken in FIFO order. Give hands its unit directly to the
// oldest waiter, so a task taking later cannot overtake it. A woken waiter
// keeps its entry, marked granted, until it runs and claims the unit.
type Blocking struct {
	count   int
	queued  int
	waker   Waker
	waiters *queue.FIFO[waiter]
}

// NewBlocking creates a semaphore holding count units that can track up to
// maxWaiters blocked or granted tasks.
func NewBlocking(waker Waker, count, maxWaiters int) *Blocking {
	return &Blocking{
		count:   count,
		waker:   waker,
		waiters: queue.NewFIFO[waiter](maxWaiters),
	}
}

// Take takes a unit, or blocks the calling task at marker m until Give hands
// one over. When the waiter queue is full even after entries of killed tasks
// are reclaimed, the task gets scheduler.Error.
func (b *Blocking) Take(f *scheduler.Frame, m scheduler.Marker) scheduler.Result {
	id := f.ID()
	if h, w, ok := b.find(id); ok {
		if !w.granted {
			return f.Block(m)
		}
		b.waiters.Remove(h)
		return scheduler.Success
	}
	if b.TryTake() {
		return scheduler.Success
	}
	if _, ok := b.waiters.Push(waiter{id: id}); !ok {
		b.reclaim()
		if b.TryTake() {
			return scheduler.Success
		}
		if _, ok = b.waiters.Push(waiter{id: id}); !ok {
			return scheduler.Error
		}
	}
	b.queued++
	return f.Block(m)
}

// TryTake takes a unit without waiting. It fails while tasks are queued.
func (b *Blocking) TryTake() bool {
	if b.count == 0 || b.queued > 0 {
		return false
	}
	b.count--
	return true
}

// Give returns a unit, handing it to the oldest live waiter if there is one.
func (b *Blocking) Give() {
	b.count++
	b.handOff()
}

func (b *Blocking) handOff() {
	for b.count > 0 && b.queued > 0 {
		for h, w := range b.waiters.All() {
			if w.granted {
				continue
			}
			b.queued--
			if err := b.waker.Wake(w.id); err != nil {
				// waiter was killed while blocked
				b.waiters.Remove(h)
				break
			}
			w.granted = true
			b.count--
			break
		}
	}
}

// reclaim drops entries of killed tasks; units granted to them are handed on.
func (b *Blocking) reclaim() {
	for h, w := range b.waiters.All() {
		if _, live := b.waker.State(w.id); live {
			continue
		}
		if w.granted {
			b.count++
		} else {
			b.queued--
		}
		b.waiters.Remove(h)
	}
	b.handOff()
}

// Cancel forgets a waiter, e.g. after the task was killed. A unit already
// handed to it is given back.
func (b *Blocking) Cancel(id scheduler.ID) {
	h, w, ok := b.find(id)
	if !ok {
		return
	}
	granted := w.granted
	b.waiters.Remove(h)
	if granted {
		b.Give()
		return
	}
	b.queued--
}

// Count returns the available units.
func (b *Blocking) Count() int {
	return b.count
}

// Waiting returns the number of blocked takers.
func (b *Blocking) Waiting() int {
	return b.queued
}

func (b *Blocking) find(id scheduler.ID) (queue.Handle, *waiter, bool) {
	for h, w := range b.waiters.All() {
		if w.id == id {
			return h, w, true
		}
	}
	return queue.Handle{}, nil, false
}
