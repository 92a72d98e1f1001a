// Package event publishes task lifecycle events to a messaging queue and
// dispatches them to listeners.
package event

import "time"

// Context identifies where an event originated.
type Context struct {
	SchedulerID string `json:"schedulerID"`
	TaskID      string `json:"taskID"`
	EventType   string `json:"eventType"`
	Tick        uint64 `json:"tick"`
}

// Event is an envelope around a payload of type T.
type Event[T any] struct {
	Context   *Context       `json:"context"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Data      T              `json:"data"`
}

// NewEvent creates an event; CreatedAt is stamped on publish.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{Context: context, Data: data}
}

// WithMetadata sets a metadata entry and returns e.
func (e *Event[T]) WithMetadata(key string, value any) *Event[T] {
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	e.Metadata[key] = value
	return e
}

// Lifecycle is the payload of a task state change.
type Lifecycle struct {
	From string `json:"from"`
	To   string `json:"to"`
}
