package scheduler

import (
	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/runtime/continuation"
)

// Marker identifies a resumption point inside a task function; 0 is entry.
type Marker = continuation.Marker

// Frame is the per-task handle through which a task function reaches its
// continuation stack and the scheduler. Frames are preallocated, one per
// task slot.
type Frame struct {
	sched *Scheduler
	id    ID
	stack continuation.Stack
}

// ID returns the task id.
func (f *Frame) ID() ID { return f.id }

// Scheduler returns the owning scheduler.
func (f *Frame) Scheduler() *Scheduler { return f.sched }

// Now returns the current tick.
func (f *Frame) Now() clock.Tick { return f.sched.Now() }

// Resume returns the marker recorded at the current nesting level, or 0 when
// the function starts fresh. Task functions switch on it first thing.
func (f *Frame) Resume() Marker { return f.stack.Resume() }

// Depth returns the number of outstanding markers.
func (f *Frame) Depth() int { return f.stack.Depth() }

// Level returns the nesting level currently executing.
func (f *Frame) Level() int { return f.stack.Level() }

// Yield records m and gives up the processor; the task stays ready.
func (f *Frame) Yield(m Marker) Result {
	f.stack.Suspend(m)
	return Suspended
}

// Sleep records m and puts the task to sleep for ticks.
func (f *Frame) Sleep(m Marker, ticks uint32) Result {
	if err := f.sched.Sleep(f.id, ticks); err != nil {
		f.sched.logger.Warn("sleep failed", "task_id", f.id.String(), "error", err)
		return Error
	}
	f.stack.Suspend(m)
	return Suspended
}

// Block records m and blocks the task until it is woken.
func (f *Frame) Block(m Marker) Result {
	if err := f.sched.Block(f.id); err != nil {
		f.sched.logger.Warn("block failed", "task_id", f.id.String(), "error", err)
		return Error
	}
	f.stack.Suspend(m)
	return Suspended
}

// Call invokes fn one nesting level deeper, recording m as the call site. A
// caller receiving Suspended must return it unchanged and re-issue the same
// Call when Resume hands m back. Exceeding the maximum depth returns Error.
func (f *Frame) Call(m Marker, fn Func, arg any) Result {
	if err := f.stack.Enter(m); err != nil {
		f.sched.logger.Warn("call rejected", "task_id", f.id.String(), "level", f.stack.Level(), "error", err)
		return Error
	}
	result := fn(f, arg)
	f.stack.Leave()
	return result
}

// Exit clears the marker of the current level and returns r. Every
// non-suspending return of a suspension-capable function goes through it.
func (f *Frame) Exit(r Result) Result {
	f.stack.Exit()
	return r
}
