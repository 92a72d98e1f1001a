// Package queue provides FIFO and sorted queues backed by fixed-capacity
// pools. Nodes are preallocated, so Push never allocates and fails cleanly
// once the capacity is used up.
package queue

import "iter"

// FIFO is a first-in first-out queue.
type FIFO[T any] struct {
	list[T]
}

// NewFIFO creates a FIFO queue holding at most capacity elements.
func NewFIFO[T any](capacity int) *FIFO[T] {
	return &FIFO[T]{list: newList[T](capacity)}
}

// Push appends v at the tail. It returns false, leaving the queue unchanged,
// when the queue is full.
func (q *FIFO[T]) Push(v T) (Handle, bool) {
	return q.insertBefore(Handle{}, v)
}

// Pop removes and returns the head element.
func (q *FIFO[T]) Pop() (T, bool) { return q.pop() }

// Peek returns the head element without removing it.
func (q *FIFO[T]) Peek() (*T, bool) { return q.peek() }

// Remove unlinks the element identified by h.
func (q *FIFO[T]) Remove(h Handle) bool {
	_, ok := q.remove(h)
	return ok
}

// Get returns the element identified by h.
func (q *FIFO[T]) Get(h Handle) (*T, bool) { return q.get(h) }

// Size returns the number of queued elements.
func (q *FIFO[T]) Size() int { return q.size }

// Cap returns the queue capacity.
func (q *FIFO[T]) Cap() int { return q.nodes.Cap() }

// All iterates the queue from head to tail.
func (q *FIFO[T]) All() iter.Seq2[Handle, *T] { return q.all() }

// Sorted keeps its elements ordered by a user supplied predicate. Elements
// comparing equal stay in insertion order.
type Sorted[T any] struct {
	list[T]
	less func(a, b *T) bool
}

// NewSorted creates a sorted queue holding at most capacity elements.
func NewSorted[T any](capacity int, less func(a, b *T) bool) *Sorted[T] {
	return &Sorted[T]{list: newList[T](capacity), less: less}
}

// Push inserts v before the first element it is less than, walking from the
// head. It returns false, leaving the queue unchanged, when the queue is full.
func (q *Sorted[T]) Push(v T) (Handle, bool) {
	var at Handle
	for h, e := range q.all() {
		if q.less(&v, e) {
			at = h
			break
		}
	}
	return q.insertBefore(at, v)
}

// Pop removes and returns the smallest element.
func (q *Sorted[T]) Pop() (T, bool) { return q.pop() }

// Peek returns the smallest element without removing it.
func (q *Sorted[T]) Peek() (*T, bool) { return q.peek() }

// Remove unlinks the element identified by h.
func (q *Sorted[T]) Remove(h Handle) bool {
	_, ok := q.remove(h)
	return ok
}

// Get returns the element identified by h.
func (q *Sorted[T]) Get(h Handle) (*T, bool) { return q.get(h) }

// Size returns the number of queued elements.
func (q *Sorted[T]) Size() int { return q.size }

// Cap returns the queue capacity.
func (q *Sorted[T]) Cap() int { return q.nodes.Cap() }

// All iterates the queue in ascending order.
func (q *Sorted[T]) All() iter.Seq2[Handle, *T] { return q.all() }
