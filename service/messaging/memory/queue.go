// Package memory provides a bounded, channel backed messaging.Queue. Besides
// the blocking Publish/Consume pair it offers Offer and Drain, which never
// block and never allocate, for hand-off from other goroutines into a
// polling loop.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/flightcore/internal/idgen"
	"github.com/viant/flightcore/service/messaging"
)

// Config sizes the queue and its redelivery policy.
type Config struct {
	QueueBuffer int           `yaml:"queueBuffer" json:"queueBuffer"`
	MaxRetries  int           `yaml:"maxRetries" json:"maxRetries"`
	RetryDelay  time.Duration `yaml:"retryDelay" json:"retryDelay"`
	// DeadLetter keeps messages whose retries are exhausted.
	DeadLetter bool `yaml:"deadLetter" json:"deadLetter"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{QueueBuffer: 100, MaxRetries: 3, RetryDelay: 100 * time.Millisecond, DeadLetter: true}
}

type envelope[T any] struct {
	id       string
	payload  T
	attempts int
}

// Message is a consumed envelope awaiting Ack or Nack.
type Message[T any] struct {
	envelope[T]
	queue *Queue[T]
	once  sync.Once
}

// ID returns the message id; messages queued with Offer have none.
func (m *Message[T]) ID() string { return m.id }

// T returns the message payload
func (m *Message[T]) T() *T { return &m.payload }

// Ack settles the message.
func (m *Message[T]) Ack() error {
	return m.settle(func() {})
}

// Nack schedules redelivery after RetryDelay. Once MaxRetries is exhausted,
// or the queue is full at redelivery time, the message is dead lettered.
func (m *Message[T]) Nack(error) error {
	return m.settle(func() {
		retry := m.envelope
		retry.attempts++
		if retry.attempts > m.queue.config.MaxRetries {
			m.queue.bury(retry)
			return
		}
		time.AfterFunc(m.queue.config.RetryDelay, func() {
			if !m.queue.offer(retry) {
				m.queue.bury(retry)
			}
		})
	})
}

func (m *Message[T]) settle(fn func()) error {
	err := messaging.ErrProcessed
	m.once.Do(func() {
		err = nil
		fn()
	})
	return err
}

// Queue is a bounded messaging.Queue. All methods are safe for concurrent use.
type Queue[T any] struct {
	config   Config
	messages chan envelope[T]
	mu       sync.Mutex
	dead     []envelope[T]
}

// NewQueue creates a queue; a non-positive QueueBuffer takes the default.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{config: config, messages: make(chan envelope[T], config.QueueBuffer)}
}

// Publish queues t, waiting for room until ctx is done.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.messages <- envelope[T]{id: idgen.New(), payload: *t}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offer queues v without blocking; it returns false when the queue is full.
func (q *Queue[T]) Offer(v T) bool {
	return q.offer(envelope[T]{payload: v})
}

func (q *Queue[T]) offer(e envelope[T]) bool {
	select {
	case q.messages <- e:
		return true
	default:
		return false
	}
}

// Consume waits for the next message until ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case e := <-q.messages:
		return &Message[T]{envelope: e, queue: q}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain hands every queued payload to fn without blocking and returns how
// many were delivered. Drained messages need no acknowledgement.
func (q *Queue[T]) Drain(fn func(T)) int {
	for n := 0; ; n++ {
		select {
		case e := <-q.messages:
			fn(e.payload)
		default:
			return n
		}
	}
}

// Size returns the number of queued messages.
func (q *Queue[T]) Size() int { return len(q.messages) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.messages) }

func (q *Queue[T]) bury(e envelope[T]) {
	if !q.config.DeadLetter {
		return
	}
	q.mu.Lock()
	q.dead = append(q.dead, e)
	q.mu.Unlock()
}

// DeadLetters returns the payloads of dead lettered messages, oldest first.
func (q *Queue[T]) DeadLetters() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]T, len(q.dead))
	for i, e := range q.dead {
		result[i] = e.payload
	}
	return result
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
