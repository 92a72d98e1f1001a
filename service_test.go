package flightcore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/internal/logging"
	"github.com/viant/flightcore/progress"
	"github.com/viant/flightcore/service/event"
	"github.com/viant/flightcore/service/scheduler"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func blinker(f *scheduler.Frame, arg any) scheduler.Result {
	count := arg.(*int)
	switch f.Resume() {
	case 0:
		*count++
		return f.Sleep(1, 10)
	}
	return f.Exit(scheduler.Success)
}

func TestService_Defaults(t *testing.T) {
	srv, err := New(WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.NotEmpty(t, srv.ID())
	assert.Equal(t, srv.ID(), srv.Scheduler().ID())
	assert.True(t, srv.Scheduler().Initialized())
	assert.Nil(t, srv.Events())
	assert.Equal(t, DefaultConfig().Scheduler, srv.Scheduler().Config())
}

func TestService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickResolution = 0
	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestService_ProgressAndEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.PublishTimeout = time.Second

	var mu sync.Mutex
	var events []string
	received := make(chan struct{}, 16)
	manual := clock.NewManual(0)
	var transitions int
	srv, err := NewFromConfig(cfg,
		WithLogger(logging.Discard()),
		WithTimeSource(manual.Source()),
		WithObserver(scheduler.ObserverFunc(func(scheduler.Transition) { transitions++ })),
		WithEventHandler(func(e *event.Event[any]) {
			mu.Lock()
			events = append(events, e.Context.EventType)
			mu.Unlock()
			received <- struct{}{}
		}),
	)
	require.NoError(t, err)
	defer srv.Close(context.Background())

	count := 0
	_, err = srv.Scheduler().Start(blinker, &count)
	require.NoError(t, err)
	_, err = srv.Scheduler().SelectAndRun()
	require.NoError(t, err)
	manual.Advance(10)
	_, err = srv.Scheduler().SelectAndRun()
	require.NoError(t, err)

	snapshot := srv.Progress().Snapshot()
	assert.Equal(t, 1, snapshot.StartedTasks)
	assert.Equal(t, 1, snapshot.Sleeps)
	assert.Equal(t, 1, snapshot.Wakes)
	assert.Equal(t, 1, snapshot.LiveTasks)
	assert.Equal(t, 0, snapshot.SleepingTasks)
	assert.Equal(t, 3, transitions)

	for i := 0; i < 3; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"started", "sleeping", "woken"}, events)
}

func TestService_ProgressListener(t *testing.T) {
	var last progress.Progress
	srv, err := New(WithLogger(logging.Discard()), WithProgressListener(func(p progress.Progress) { last = p }))
	require.NoError(t, err)
	_, err = srv.Scheduler().Start(func(f *scheduler.Frame, arg any) scheduler.Result { return scheduler.Success }, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, last.StartedTasks)
}

func TestService_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	cfg := DefaultConfig()
	cfg.Tracing.Enabled = true
	srv, err := NewFromConfig(cfg, WithLogger(logging.Discard()), WithTracingExporter(exporter), WithTimeSource(clock.NewManual(0).Source()))
	require.NoError(t, err)
	_, err = srv.Scheduler().Start(func(f *scheduler.Frame, arg any) scheduler.Result { return f.Yield(1) }, nil)
	require.NoError(t, err)
	_, err = srv.Scheduler().SelectAndRun()
	require.NoError(t, err)
	require.NoError(t, srv.Close(context.Background()))
	// the provider is installed once per process, another test may have won
	if spans := exporter.GetSpans(); len(spans) > 0 {
		assert.Equal(t, "scheduler.dispatch", spans[0].Name)
	}
}

func TestService_Run(t *testing.T) {
	srv, err := New(WithLogger(logging.Discard()))
	require.NoError(t, err)
	count := 0
	_, err = srv.Scheduler().Start(func(f *scheduler.Frame, arg any) scheduler.Result {
		*arg.(*int)++
		return f.Yield(1)
	}, &count)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, srv.Run(ctx))
	assert.Greater(t, count, 0)
}

func TestService_StatusHandler(t *testing.T) {
	srv, err := New(WithLogger(logging.Discard()))
	require.NoError(t, err)
	_, err = srv.Scheduler().Start(func(f *scheduler.Frame, arg any) scheduler.Result { return scheduler.Success }, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.StatusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got progress.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, srv.ID(), got.SchedulerID)
	assert.Equal(t, 1, got.LiveTasks)
}
