package scheduler

import "errors"

var (
	// ErrNoTimeSource is returned by Init when no tick source is supplied.
	ErrNoTimeSource = errors.New("scheduler: time source is required")
	// ErrNotInitialized is returned by time dependent operations before Init.
	ErrNotInitialized = errors.New("scheduler: not initialized")
	// ErrTableFull is returned by Start when every task slot is taken.
	ErrTableFull = errors.New("scheduler: task table full")
	// ErrInvalidTask is returned for out of range, stale or killed task ids.
	ErrInvalidTask = errors.New("scheduler: invalid task id")
	// ErrNilFunc is returned by Start when the task function is nil.
	ErrNilFunc = errors.New("scheduler: task function is nil")
)

var errTaskFailed = errors.New("task returned error")
