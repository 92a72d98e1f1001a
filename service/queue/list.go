package queue

import (
	"iter"

	"github.com/viant/flightcore/service/pool"
)

// Handle identifies an element linked into a queue.
type Handle = pool.Handle

type node[T any] struct {
	prev  Handle
	next  Handle
	value T
}

// list is a doubly linked list whose nodes are carved from a fixed pool.
type list[T any] struct {
	nodes *pool.Pool[node[T]]
	head  Handle
	tail  Handle
	size  int
}

func newList[T any](capacity int) list[T] {
	return list[T]{nodes: pool.New[node[T]](capacity)}
}

// insertBefore links v in front of at; a zero at appends to the tail.
func (l *list[T]) insertBefore(at Handle, v T) (Handle, bool) {
	h, n, ok := l.nodes.Alloc()
	if !ok {
		return Handle{}, false
	}
	n.value = v
	if at.IsZero() {
		n.prev = l.tail
		if l.tail.IsZero() {
			l.head = h
		} else {
			l.node(l.tail).next = h
		}
		l.tail = h
	} else {
		next := l.node(at)
		n.next = at
		n.prev = next.prev
		if next.prev.IsZero() {
			l.head = h
		} else {
			l.node(next.prev).next = h
		}
		next.prev = h
	}
	l.size++
	return h, true
}

func (l *list[T]) remove(h Handle) (T, bool) {
	var zero T
	n, ok := l.nodes.Get(h)
	if !ok {
		return zero, false
	}
	if n.prev.IsZero() {
		l.head = n.next
	} else {
		l.node(n.prev).next = n.next
	}
	if n.next.IsZero() {
		l.tail = n.prev
	} else {
		l.node(n.next).prev = n.prev
	}
	v := n.value
	l.nodes.Free(h)
	l.size--
	return v, true
}

func (l *list[T]) node(h Handle) *node[T] {
	n, _ := l.nodes.Get(h)
	return n
}

func (l *list[T]) pop() (T, bool) {
	if l.head.IsZero() {
		var zero T
		return zero, false
	}
	return l.remove(l.head)
}

func (l *list[T]) peek() (*T, bool) {
	if l.head.IsZero() {
		return nil, false
	}
	return &l.node(l.head).value, true
}

func (l *list[T]) get(h Handle) (*T, bool) {
	n, ok := l.nodes.Get(h)
	if !ok {
		return nil, false
	}
	return &n.value, true
}

// all iterates head to tail. Removing the element being visited is allowed.
func (l *list[T]) all() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for h := l.head; !h.IsZero(); {
			n := l.node(h)
			next := n.next
			if !yield(h, &n.value) {
				return
			}
			h = next
		}
	}
}
