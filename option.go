package flightcore

import (
	"log/slog"

	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/progress"
	"github.com/viant/flightcore/service/event"
	"github.com/viant/flightcore/service/scheduler"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service.
type Option func(s *Service)

// WithLogger overrides the logger built from Config.Logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTimeSource replaces the monotonic tick source, e.g. with a hardware
// timer or a clock.Manual in tests.
func WithTimeSource(src clock.Source) Option {
	return func(s *Service) { s.timeSource = src }
}

// WithSchedulerOptions passes additional options to scheduler.New; they are
// applied after the ones derived from Config.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(s *Service) {
		s.schedulerOptions = append(s.schedulerOptions, opts...)
	}
}

// WithObserver adds a transition observer next to the built-in ones.
func WithObserver(observer scheduler.Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, observer)
	}
}

// WithEventService uses svc instead of building one from Config.Events.
func WithEventService(svc *event.Service) Option {
	return func(s *Service) { s.events = svc }
}

// WithEventHandler receives every lifecycle event on the listener goroutine.
func WithEventHandler(handler func(*event.Event[any])) Option {
	return func(s *Service) { s.eventHandler = handler }
}

// WithProgressListener is called after every counter update.
func WithProgressListener(fn func(progress.Progress)) Option {
	return func(s *Service) { s.onProgress = fn }
}

// WithTracingExporter configures tracing with a custom SpanExporter, for
// example OTLP, instead of the stdout or file exporter. Tracing must still be
// enabled in Config.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) { s.exporter = exporter }
}
