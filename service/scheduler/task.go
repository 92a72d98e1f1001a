package scheduler

import (
	"fmt"

	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/service/pool"
	"github.com/viant/flightcore/service/queue"
)

// ID identifies a task slot for as long as the task lives. Ids of killed
// tasks are stale and rejected, even once the slot is reused.
type ID struct {
	handle pool.Handle
}

// IsZero reports whether id was never assigned.
func (id ID) IsZero() bool { return id.handle.IsZero() }

// Slot returns the task table index.
func (id ID) Slot() int { return id.handle.Index() }

// String returns "slot:generation".
func (id ID) String() string {
	if id.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%d:%d", id.handle.Index(), id.handle.Generation())
}

// State is the scheduling state of a task.
type State int

const (
	Unallocated State = iota
	Ready
	Sleeping
	Blocked
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Sleeping:
		return "sleeping"
	case Blocked:
		return "blocked"
	default:
		return "unallocated"
	}
}

// Result is returned by task functions.
type Result int

const (
	// Success ends the current step; the task stays scheduled and its next
	// dispatch starts from the function entry.
	Success Result = iota
	// Suspended reports that the function stopped at a suspension point.
	Suspended
	// Error kills the task.
	Error
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Suspended:
		return "suspended"
	case Error:
		return "error"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Func is a task function.
type Func func(f *Frame, arg any) Result

// Poller is any object that can be driven as a task, e.g. a device polled
// for completion.
type Poller interface {
	Poll(f *Frame) Result
}

type link uint8

const (
	linkNone link = iota
	linkReady
	linkSleep
)

// task is a task table record.
type task struct {
	id       ID
	state    State
	fn       Func
	arg      any
	deadline clock.Tick
	link     link
	node     queue.Handle
}

// sleeper is a sleep queue entry.
type sleeper struct {
	deadline clock.Tick
	id       ID
}

func earlier(a, b *sleeper) bool {
	return a.deadline < b.deadline
}
