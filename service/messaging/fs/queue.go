// Package fs provides a messaging.Queue journaled as JSON files through afs,
// so events survive the process that produced them.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/flightcore/internal/idgen"
	"github.com/viant/flightcore/service/messaging"
)

// State is the lifecycle stage of a journaled message.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateDead       State = "dlq"
)

const ext = ".json"

// Config holds configuration for the filesystem queue.
type Config struct {
	BasePath   string `yaml:"basePath" json:"basePath"`
	MaxRetries int    `yaml:"maxRetries" json:"maxRetries"`
	// Retain keeps acknowledged messages under completed/ instead of deleting them.
	Retain bool `yaml:"retain" json:"retain"`
}

// DefaultConfig returns a default queue configuration rooted at basePath.
func DefaultConfig(basePath string) Config {
	return Config{BasePath: basePath, MaxRetries: 3, Retain: true}
}

// Message is a journaled payload.
type Message[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Retries   int       `json:"retries"`

	name      string
	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Name returns the journal file name, which sorts in publish order.
func (m *Message[T]) Name() string {
	return m.name
}

// Ack moves the message out of processing.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrProcessed
	}
	m.processed = true
	m.State = StateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.settle(context.Background(), m)
}

// Nack returns the message to pending, or to the dead letter directory once
// MaxRetries is exceeded.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrProcessed
	}
	m.processed = true
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.State = StatePending
	if m.Retries > m.queue.config.MaxRetries {
		m.State = StateDead
	}
	m.UpdatedAt = time.Now()
	return m.queue.settle(context.Background(), m)
}

// Queue is a filesystem backed messaging.Queue. File names sort in publish
// order, so Consume returns the oldest pending message first.
type Queue[T any] struct {
	fs     afs.Service
	config Config
	seq    atomic.Uint64
	mu     sync.Mutex
}

// NewQueue creates the state directories under config.BasePath.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{fs: fs, config: config}
	ctx := context.Background()
	for _, state := range []State{StatePending, StateProcessing, StateCompleted, StateDead} {
		dir := q.dir(state)
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

// Publish journals t under pending/.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := time.Now()
	m := &Message[T]{
		ID:        idgen.New(),
		Data:      *t,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.name = fmt.Sprintf("%020d-%06d-%s%s", now.UnixNano(), q.seq.Add(1)%1000000, m.ID, ext)
	return q.write(ctx, m)
}

// Consume claims the oldest pending message. It returns nil, nil when nothing
// is pending.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	names, err := q.list(ctx, StatePending)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	name := names[0]
	m, err := q.read(ctx, path.Join(q.dir(StatePending), name))
	if err != nil {
		_ = q.fs.Move(ctx, path.Join(q.dir(StatePending), name), path.Join(q.dir(StateDead), "invalid-"+name))
		return nil, err
	}
	m.name = name
	m.queue = q
	m.State = StateProcessing
	m.UpdatedAt = time.Now()
	if err = q.write(ctx, m); err != nil {
		return nil, err
	}
	if err = q.fs.Delete(ctx, path.Join(q.dir(StatePending), name)); err != nil {
		return nil, fmt.Errorf("failed to delete pending message %s: %w", name, err)
	}
	return m, nil
}

// Browse reads pending messages journaled after the file named after, oldest
// first, leaving them in place for consumers. An empty after reads them all.
// Settling a browsed message reports messaging.ErrProcessed.
func (q *Queue[T]) Browse(ctx context.Context, after string) ([]*Message[T], error) {
	names, err := q.list(ctx, StatePending)
	if err != nil {
		return nil, err
	}
	var result []*Message[T]
	for _, name := range names {
		if name <= after {
			continue
		}
		m, err := q.read(ctx, path.Join(q.dir(StatePending), name))
		if err != nil {
			return nil, err
		}
		m.name = name
		m.processed = true
		result = append(result, m)
	}
	return result, nil
}

// Pending returns the number of messages waiting to be consumed.
func (q *Queue[T]) Pending(ctx context.Context) (int, error) {
	names, err := q.list(ctx, StatePending)
	return len(names), err
}

// Dead returns the number of messages in the dead letter directory.
func (q *Queue[T]) Dead(ctx context.Context) (int, error) {
	names, err := q.list(ctx, StateDead)
	return len(names), err
}

func (q *Queue[T]) settle(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if m.State != StateCompleted || q.config.Retain {
		if err := q.write(ctx, m); err != nil {
			return err
		}
	}
	processing := path.Join(q.dir(StateProcessing), m.name)
	if exists, _ := q.fs.Exists(ctx, processing); exists {
		if err := q.fs.Delete(ctx, processing); err != nil {
			return fmt.Errorf("failed to delete processing message %s: %w", m.name, err)
		}
	}
	return nil
}

func (q *Queue[T]) dir(state State) string {
	return path.Join(q.config.BasePath, string(state))
}

func (q *Queue[T]) list(ctx context.Context, state State) ([]string, error) {
	objects, err := q.fs.List(ctx, q.dir(state), option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s messages: %w", state, err)
	}
	var names []string
	for _, obj := range objects {
		if isMessage(obj) {
			names = append(names, obj.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isMessage(obj storage.Object) bool {
	return !obj.IsDir() && strings.HasSuffix(obj.Name(), ext)
}

func (q *Queue[T]) write(ctx context.Context, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", m.ID, err)
	}
	URL := path.Join(q.dir(m.State), m.name)
	if err = q.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %s: %w", URL, err)
	}
	return nil
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	var m Message[T]
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return &m, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
