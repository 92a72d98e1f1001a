package scheduler

import "github.com/viant/flightcore/internal/clock"

// Event names a task lifecycle transition.
type Event string

const (
	EventStarted  Event = "started"
	EventSleeping Event = "sleeping"
	EventBlocked  Event = "blocked"
	EventWoken    Event = "woken"
	EventKilled   Event = "killed"
	EventFailed   Event = "failed"
)

// Transition describes a task state change.
type Transition struct {
	Event Event
	Task  ID
	From  State
	To    State
	Tick  clock.Tick
}

// Observer receives transitions synchronously on the dispatching goroutine.
// It must not call back into the scheduler.
type Observer interface {
	Observe(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Transition)

// Observe calls fn(t).
func (fn ObserverFunc) Observe(t Transition) { fn(t) }
