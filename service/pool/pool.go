package pool

import "sync/atomic"

const none = int32(-1)

var owners atomic.Uint32

// Handle identifies an object carved by a Pool. The zero Handle is never valid.
type Handle struct {
	owner      uint32
	index      int32
	generation uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.owner == 0
}

// Index returns the slot index inside the owning pool.
func (h Handle) Index() int {
	return int(h.index)
}

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 {
	return h.generation
}

type descriptor[T any] struct {
	allocated  bool
	generation uint32
	next       int32
	payload    T
}

// Pool is a fixed-capacity slab allocator. Every slot is allocated when the
// pool is created; Alloc and Free only move slots on and off the free list.
type Pool[T any] struct {
	owner     uint32
	slots     []descriptor[T]
	free      int32
	available int
}

// New creates a pool holding up to capacity objects.
func New[T any](capacity int) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T]{
		owner:     owners.Add(1),
		slots:     make([]descriptor[T], capacity),
		free:      none,
		available: capacity,
	}
	for i := capacity - 1; i >= 0; i-- {
		p.slots[i].next = p.free
		p.free = int32(i)
	}
	return p
}

// Alloc takes an object from the free list. It returns false when the pool
// is exhausted.
func (p *Pool[T]) Alloc() (Handle, *T, bool) {
	if p.free == none {
		return Handle{}, nil, false
	}
	index := p.free
	slot := &p.slots[index]
	p.free = slot.next
	slot.next = none
	slot.allocated = true
	slot.generation++
	if slot.generation == 0 {
		// generation 0 is reserved for the zero Handle
		slot.generation = 1
	}
	p.available--
	return Handle{owner: p.owner, index: index, generation: slot.generation}, &slot.payload, true
}

// Free returns the object identified by h to the free list. Handles issued by
// another pool, stale handles and handles of free slots are rejected.
func (p *Pool[T]) Free(h Handle) bool {
	slot := p.slot(h)
	if slot == nil {
		return false
	}
	var zero T
	slot.payload = zero
	slot.allocated = false
	slot.next = p.free
	p.free = h.index
	p.available++
	return true
}

// Get returns the live object identified by h.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	slot := p.slot(h)
	if slot == nil {
		return nil, false
	}
	return &slot.payload, true
}

// Owns reports whether h refers to a live object of this pool.
func (p *Pool[T]) Owns(h Handle) bool {
	return p.slot(h) != nil
}

// Cap returns the fixed capacity.
func (p *Pool[T]) Cap() int {
	return len(p.slots)
}

// Len returns the number of live objects.
func (p *Pool[T]) Len() int {
	return len(p.slots) - p.available
}

// Available returns the size of the free list.
func (p *Pool[T]) Available() int {
	return p.available
}

func (p *Pool[T]) slot(h Handle) *descriptor[T] {
	if h.owner != p.owner || h.index < 0 || int(h.index) >= len(p.slots) {
		return nil
	}
	slot := &p.slots[h.index]
	if !slot.allocated || slot.generation != h.generation {
		return nil
	}
	return slot
}
