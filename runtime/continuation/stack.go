// Package continuation implements the per-task resumption record used by the
// scheduler to let plain functions suspend and later resume where they left
// off.
//
// Each nesting level of a suspended call chain owns one Marker: an enumerated
// program counter chosen by the function at that level. When the task is
// dispatched again the outermost function switches on its marker, re-invokes
// the call it suspended in, which switches on its own marker one level deeper,
// and so on until the chain reaches the point of suspension.
//
//	func step(s *continuation.Stack) {
//		switch s.Resume() {
//		case 0:
//			// first run
//			s.Suspend(1)
//			return
//		case 1:
//			// resumed
//		}
//		s.Exit()
//	}
package continuation

import "errors"

// Marker identifies where a function resumes. Zero is the function entry.
type Marker uint16

// Entry is the marker of a function that has no outstanding suspension.
const Entry Marker = 0

// DefaultMaxDepth is used when a non-positive depth is requested.
const DefaultMaxDepth = 8

// ErrDepthExceeded is returned when a call would nest deeper than the stack allows.
var ErrDepthExceeded = errors.New("continuation: call depth exceeded")

// Stack is a bounded, depth-indexed sequence of markers.
type Stack struct {
	markers []Marker
	level   int
	depth   int
}

// New creates a stack allowing up to maxDepth nested levels.
func New(maxDepth int) *Stack {
	s := &Stack{}
	s.Init(maxDepth)
	return s
}

// Init sizes the stack in place; it is meant for stacks embedded in
// preallocated records.
func (s *Stack) Init(maxDepth int) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	s.markers = make([]Marker, maxDepth)
	s.level = 0
	s.depth = 0
}

// Resume returns the marker recorded at the current level, or Entry.
func (s *Stack) Resume() Marker {
	if s.level >= s.depth {
		return Entry
	}
	return s.markers[s.level]
}

// Suspend records m as the resumption point of the current level. Levels
// deeper than the current one have completed and are discarded.
func (s *Stack) Suspend(m Marker) {
	s.markers[s.level] = m
	s.depth = s.level + 1
}

// Enter records call site m at the current level and descends into the
// callee's level.
func (s *Stack) Enter(m Marker) error {
	if s.level+1 >= len(s.markers) {
		return ErrDepthExceeded
	}
	s.markers[s.level] = m
	if s.depth < s.level+1 {
		s.depth = s.level + 1
	}
	s.level++
	return nil
}

// Leave returns to the caller's level once the callee has returned.
func (s *Stack) Leave() {
	if s.level > 0 {
		s.level--
	}
}

// Exit clears the current level so the next invocation starts from Entry.
func (s *Stack) Exit() {
	s.markers[s.level] = Entry
	if s.depth > s.level {
		s.depth = s.level
	}
}

// Rewind moves back to the outermost level keeping recorded markers; the
// scheduler calls it before every dispatch.
func (s *Stack) Rewind() {
	s.level = 0
}

// Reset discards every recorded marker.
func (s *Stack) Reset() {
	for i := 0; i < s.depth; i++ {
		s.markers[i] = Entry
	}
	s.level = 0
	s.depth = 0
}

// Depth returns the number of levels holding an outstanding marker.
func (s *Stack) Depth() int {
	return s.depth
}

// Level returns the nesting level currently executing.
func (s *Stack) Level() int {
	return s.level
}

// Cap returns the maximum nesting depth.
func (s *Stack) Cap() int {
	return len(s.markers)
}
