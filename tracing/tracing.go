package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/viant/flightcore"

var (
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
)

// Init installs a stdout exporter writing to outputFile, or to os.Stdout when
// it is empty. Once a provider is installed later calls are no-ops.
func Init(serviceName, serviceVersion, outputFile string) error {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		return nil
	}
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open trace output %s: %w", outputFile, err)
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return install(serviceName, serviceVersion, exporter)
}

// InitWithExporter installs exporter, for example OTLP or an in-memory
// exporter in tests. Once a provider is installed later calls are no-ops.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return fmt.Errorf("tracing: nil exporter")
	}
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		return nil
	}
	return install(serviceName, serviceVersion, exporter)
}

func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	res, err := resource.New(context.Background(), resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	))
	if err != nil {
		return err
	}
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return nil
}

// Enabled reports whether a provider has been installed.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return provider != nil
}

// Flush exports spans still buffered by the installed provider.
func Flush(ctx context.Context) error {
	mu.Lock()
	p := provider
	mu.Unlock()
	if p == nil {
		return nil
	}
	return p.ForceFlush(ctx)
}

// Span is an in-flight span. A nil *Span is a valid no-op.
type Span struct {
	span trace.Span
}

// Start opens an internal span.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentation).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
	return ctx, &Span{span: span}
}

// StartDispatch opens the span covering one task invocation.
func StartDispatch(ctx context.Context, schedulerID, taskID string) (context.Context, *Span) {
	return Start(ctx, "scheduler.dispatch",
		attribute.String("scheduler.id", schedulerID),
		attribute.String("task.id", taskID))
}

// Annotate sets a string attribute.
func (s *Span) Annotate(key, value string) *Span {
	if s == nil {
		return nil
	}
	s.span.SetAttributes(attribute.String(key, value))
	return s
}

// Finish records err, if any, and ends the span.
func (s *Span) Finish(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
