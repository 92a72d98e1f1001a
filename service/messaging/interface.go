package messaging

import (
	"context"
	"errors"
)

// ErrProcessed is returned when a message is acknowledged twice.
var ErrProcessed = errors.New("message already processed")

// Vendor represents the name of a messaging vendor
type Vendor string

const (
	// VendorMemory keeps messages in a bounded in-process channel.
	VendorMemory Vendor = "memory"
	// VendorFs journals messages as JSON files through afs.
	VendorFs Vendor = "fs"
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
