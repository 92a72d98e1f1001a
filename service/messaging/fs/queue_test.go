package fs

import (
	"context"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/flightcore/service/messaging"
)

type sample struct {
	Task  string `json:"task"`
	Count int    `json:"count"`
}

func newTestQueue(t *testing.T, retain bool) (*Queue[sample], afs.Service) {
	t.Helper()
	fs := afs.New()
	config := DefaultConfig(t.TempDir())
	config.MaxRetries = 1
	config.Retain = retain
	q, err := NewQueue[sample](fs, config)
	require.NoError(t, err)
	return q, fs
}

func TestQueue_PublishOrder(t *testing.T) {
	q, fs := newTestQueue(t, true)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Publish(ctx, &sample{Task: "t", Count: i}))
	}
	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, pending)

	for i := 0; i < 5; i++ {
		msg, err := q.Consume(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, i, msg.T().Count)
		require.NoError(t, msg.Ack())
		assert.ErrorIs(t, msg.Ack(), messaging.ErrProcessed)
	}
	msg, err := q.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)

	completed, err := q.list(ctx, StateCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 5)
	processing, err := q.list(ctx, StateProcessing)
	require.NoError(t, err)
	assert.Empty(t, processing)

	exists, err := fs.Exists(ctx, path.Join(q.config.BasePath, string(StateDead)))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestQueue_NackToDeadLetter(t *testing.T) {
	q, _ := newTestQueue(t, false)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, &sample{Task: "retry"}))

	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, msg.Nack(assert.AnError))

	msg, err = q.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg, "first nack returns the message to pending")
	assert.Equal(t, 1, msg.(*Message[sample]).Retries)
	require.NoError(t, msg.Nack(nil))

	msg, err = q.Consume(ctx)
	require.NoError(t, err)
	assert.Nil(t, msg)
	dead, err := q.Dead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dead)
}

func TestQueue_AckWithoutRetain(t *testing.T) {
	q, _ := newTestQueue(t, false)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, &sample{Task: "a"}))
	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, msg.Ack())
	completed, err := q.list(ctx, StateCompleted)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestNewQueue_EmptyBasePath(t *testing.T) {
	_, err := NewQueue[sample](afs.New(), Config{})
	assert.Error(t, err)
}

func TestQueue_Browse(t *testing.T) {
	q, _ := newTestQueue(t, true)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Publish(ctx, &sample{Task: "t", Count: i}))
	}

	msgs, err := q.Browse(ctx, "")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, msg := range msgs {
		assert.Equal(t, i, msg.T().Count)
	}
	assert.ErrorIs(t, msgs[0].Ack(), messaging.ErrProcessed)
	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pending, "browsing leaves messages pending")

	rest, err := q.Browse(ctx, msgs[0].Name())
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, 1, rest[0].T().Count)

	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, 0, msg.T().Count)
	require.NoError(t, msg.Ack())
}
