package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDispatchSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("flightcore", "0.0.1", exporter))
	assert.True(t, Enabled())
	require.NoError(t, InitWithExporter("other", "0.0.2", tracetest.NewInMemoryExporter()), "second install is a no-op")

	ctx, run := Start(context.Background(), "scheduler.run")
	_, dispatch := StartDispatch(ctx, "scheduler-1", "0:1")
	dispatch.Annotate("task.result", "error").Finish(errors.New("task failed"))
	run.Finish(nil)
	require.NoError(t, Flush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	got := spans[0]
	assert.Equal(t, "scheduler.dispatch", got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Contains(t, got.Attributes, attribute.String("task.id", "0:1"))
	assert.Contains(t, got.Attributes, attribute.String("task.result", "error"))
	assert.Equal(t, spans[1].SpanContext.SpanID(), got.Parent.SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.Annotate("k", "v"))
	span.Finish(errors.New("ignored"))
}

func TestInitWithExporter_Nil(t *testing.T) {
	assert.Error(t, InitWithExporter("flightcore", "", nil))
}
