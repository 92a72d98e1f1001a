package event

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	logger    *slog.Logger
	poll      time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T]), logger *slog.Logger, poll time.Duration) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		logger:    logger,
		poll:      poll,
	}
}

// Stop cancels the listener and waits for its goroutine to exit.
func (l *Listener[T]) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
}

func (l *Listener[T]) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Warn("failed to consume event", "error", err)
			}
			if event != nil {
				l.handler(event)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.poll):
			}
		}
	}()
}
