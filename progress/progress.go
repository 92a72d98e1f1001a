// Package progress keeps aggregated lifecycle counters for one scheduler
// instance. Counters are fed from scheduler transitions and can be read at
// any time from any goroutine.
package progress

import (
	"sync"
	"time"
)

// Delta represents an incremental counter change. Fields are signed so a
// single delta can move a task from one state bucket to another.
type Delta struct {
	Started  int
	Killed   int
	Failed   int
	Slept    int
	Blocked  int
	Woken    int
	Live     int
	Sleeping int
	Waiting  int
}

// Progress keeps counters for a scheduler. It is safe for concurrent use.
type Progress struct {
	SchedulerID string    `json:"schedulerId"`
	StartedAt   time.Time `json:"startedAt"`

	// Cumulative counters.
	StartedTasks int `json:"startedTasks"`
	KilledTasks  int `json:"killedTasks"`
	FailedTasks  int `json:"failedTasks"`
	Sleeps       int `json:"sleeps"`
	Blocks       int `json:"blocks"`
	Wakes        int `json:"wakes"`

	// Gauges.
	LiveTasks     int `json:"liveTasks"`
	SleepingTasks int `json:"sleepingTasks"`
	BlockedTasks  int `json:"blockedTasks"`

	sync.Mutex `json:"-"`
	onChange   func(Progress)
}

// New creates a tracker. onChange may be nil.
func New(schedulerID string, onChange func(Progress)) *Progress {
	return &Progress{SchedulerID: schedulerID, StartedAt: time.Now(), onChange: onChange}
}

// Update applies the delta. The onChange callback, if any, receives a copy
// outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.StartedTasks += d.Started
	p.KilledTasks += d.Killed
	p.FailedTasks += d.Failed
	p.Sleeps += d.Slept
	p.Blocks += d.Blocked
	p.Wakes += d.Woken
	p.LiveTasks += d.Live
	p.SleepingTasks += d.Sleeping
	p.BlockedTasks += d.Waiting
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		SchedulerID:   p.SchedulerID,
		StartedAt:     p.StartedAt,
		StartedTasks:  p.StartedTasks,
		KilledTasks:   p.KilledTasks,
		FailedTasks:   p.FailedTasks,
		Sleeps:        p.Sleeps,
		Blocks:        p.Blocks,
		Wakes:         p.Wakes,
		LiveTasks:     p.LiveTasks,
		SleepingTasks: p.SleepingTasks,
		BlockedTasks:  p.BlockedTasks,
	}
}
