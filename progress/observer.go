package progress

import "github.com/viant/flightcore/service/scheduler"

// Observe implements scheduler.Observer.
func (p *Progress) Observe(t scheduler.Transition) {
	p.Update(DeltaOf(t))
}

// DeltaOf converts a scheduler transition into counter changes.
func DeltaOf(t scheduler.Transition) Delta {
	var d Delta
	switch t.From {
	case scheduler.Sleeping:
		d.Sleeping--
	case scheduler.Blocked:
		d.Waiting--
	}
	switch t.To {
	case scheduler.Sleeping:
		d.Sleeping++
	case scheduler.Blocked:
		d.Waiting++
	}
	switch t.Event {
	case scheduler.EventStarted:
		d.Started, d.Live = 1, 1
	case scheduler.EventSleeping:
		d.Slept = 1
	case scheduler.EventBlocked:
		d.Blocked = 1
	case scheduler.EventWoken:
		d.Woken = 1
	case scheduler.EventFailed:
		d.Failed, d.Killed, d.Live = 1, 1, -1
	case scheduler.EventKilled:
		d.Killed, d.Live = 1, -1
	}
	return d
}

var _ scheduler.Observer = (*Progress)(nil)
