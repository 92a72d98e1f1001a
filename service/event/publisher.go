package event

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/flightcore/service/messaging"
)

// Publisher queues events of one payload type. Typed publishers obtained
// through PublisherOf also copy every event to the service's untyped queue,
// so a single untyped listener observes everything.
type Publisher[T any] struct {
	queue  messaging.Queue[Event[T]]
	mirror messaging.Queue[Event[any]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish queues event, stamping CreatedAt when unset.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if p.mirror != nil {
		if err := p.mirror.Publish(ctx, event.untyped()); err != nil {
			return fmt.Errorf("failed to mirror %s event: %w", event.eventType(), err)
		}
	}
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event, or nil when the queue reports none. The
// message is acknowledged before it is returned.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

func (e *Event[T]) untyped() *Event[any] {
	return &Event[any]{Context: e.Context, CreatedAt: e.CreatedAt, Metadata: e.Metadata, Data: e.Data}
}

func (e *Event[T]) eventType() string {
	if e.Context == nil {
		return "untyped"
	}
	return e.Context.EventType
}
