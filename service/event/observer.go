package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/viant/flightcore/service/scheduler"
)

// Observer publishes scheduler transitions as Lifecycle events on the
// untyped queue. A publish that does not complete within timeout is dropped
// and logged, so a stalled consumer slows dispatch by at most timeout.
type Observer struct {
	publisher   *Publisher[any]
	schedulerID string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewObserver creates an observer for the scheduler identified by schedulerID.
func NewObserver(s *Service, schedulerID string, timeout time.Duration) *Observer {
	return &Observer{
		publisher:   s.Publisher(),
		schedulerID: schedulerID,
		timeout:     timeout,
		logger:      s.logger,
	}
}

// Observe implements scheduler.Observer.
func (o *Observer) Observe(t scheduler.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	evt := NewEvent[any](&Context{
		SchedulerID: o.schedulerID,
		TaskID:      t.Task.String(),
		EventType:   string(t.Event),
		Tick:        uint64(t.Tick),
	}, Lifecycle{From: t.From.String(), To: t.To.String()})
	if err := o.publisher.Publish(ctx, evt); err != nil {
		o.logger.Warn("event dropped", "event", t.Event, "task_id", t.Task.String(), "error", err)
	}
}

var _ scheduler.Observer = (*Observer)(nil)
