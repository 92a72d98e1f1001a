package flightcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/internal/idgen"
	"github.com/viant/flightcore/internal/logging"
	"github.com/viant/flightcore/internal/status"
	"github.com/viant/flightcore/progress"
	"github.com/viant/flightcore/service/event"
	"github.com/viant/flightcore/service/messaging/fs"
	"github.com/viant/flightcore/service/scheduler"
	"github.com/viant/flightcore/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Service wires a scheduler with its ambient services.
type Service struct {
	config           *Config
	id               string
	logger           *slog.Logger
	timeSource       clock.Source
	scheduler        *scheduler.Scheduler
	schedulerOptions []scheduler.Option
	observers        []scheduler.Observer
	progress         *progress.Progress
	onProgress       func(progress.Progress)
	events           *event.Service
	eventHandler     func(*event.Event[any])
	exporter         sdktrace.SpanExporter
	status           *status.Server
}

// New creates a service from DefaultConfig.
func New(options ...Option) (*Service, error) {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates a service from cfg; a nil cfg means DefaultConfig.
func NewFromConfig(cfg *Config, options ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: cfg, id: idgen.Prefixed("scheduler")}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if s.logger == nil {
		s.logger = logging.NewLogger(logging.ParseLevel(s.config.Logging.Level), s.config.Logging.Format)
	}
	if err := s.initTracing(); err != nil {
		return err
	}
	if err := s.initEvents(); err != nil {
		return err
	}

	s.progress = progress.New(s.id, s.onProgress)
	s.status = status.New(s.progress, s.logger)
	observers := append([]scheduler.Observer{s.progress}, s.observers...)
	if s.events != nil {
		observers = append(observers, event.NewObserver(s.events, s.id, s.config.Events.PublishTimeout))
	}
	options := []scheduler.Option{
		scheduler.WithID(s.id),
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithLogger(s.logger),
		scheduler.WithTracing(s.config.Tracing.Enabled),
		scheduler.WithObserver(fanOut(observers)),
	}
	s.scheduler = scheduler.New(append(options, s.schedulerOptions...)...)

	src := s.timeSource
	if src == nil {
		src = clock.Monotonic(s.config.TickResolution)
	}
	return s.scheduler.Init(src)
}

func (s *Service) initTracing() error {
	cfg := s.config.Tracing
	if !cfg.Enabled {
		return nil
	}
	var err error
	if s.exporter != nil {
		err = tracing.InitWithExporter(cfg.ServiceName, cfg.ServiceVersion, s.exporter)
	} else {
		err = tracing.Init(cfg.ServiceName, cfg.ServiceVersion, cfg.OutputFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	return nil
}

func (s *Service) initEvents() error {
	cfg := s.config.Events
	if s.events == nil {
		if !cfg.Enabled {
			return nil
		}
		svc, err := event.New(cfg.Vendor,
			event.WithLogger(s.logger),
			event.WithFsQueueConfig(func(name string) fs.Config {
				return fs.DefaultConfig(path.Join(cfg.BasePath, name))
			}))
		if err != nil {
			return fmt.Errorf("failed to create event service: %w", err)
		}
		s.events = svc
	}
	logger := s.logger.With("component", "event")
	s.events.SetListener(func(e *event.Event[any]) {
		if e.Context != nil {
			logger.Debug("task event", "event", e.Context.EventType, "task_id", e.Context.TaskID, "tick", e.Context.Tick)
		}
		if s.eventHandler != nil {
			s.eventHandler(e)
		}
	})
	return nil
}

func fanOut(observers []scheduler.Observer) scheduler.Observer {
	if len(observers) == 1 {
		return observers[0]
	}
	return scheduler.ObserverFunc(func(t scheduler.Transition) {
		for _, observer := range observers {
			observer.Observe(t)
		}
	})
}

// ID returns the scheduler instance id.
func (s *Service) ID() string { return s.id }

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Scheduler returns the scheduler; tasks are started on it directly.
func (s *Service) Scheduler() *scheduler.Scheduler { return s.scheduler }

// Progress returns the lifecycle counters.
func (s *Service) Progress() *progress.Progress { return s.progress }

// Events returns the event service, or nil when events are disabled.
func (s *Service) Events() *event.Service { return s.events }

// StatusHandler returns the HTTP handler serving /api/v1/health and
// /api/v1/progress; Run serves it on Config.Status.Address when enabled.
func (s *Service) StatusHandler() http.Handler { return s.status }

// Run dispatches tasks until ctx is done, then releases the service. A
// cancelled or expired ctx is a normal stop and returns nil.
func (s *Service) Run(ctx context.Context) error {
	var httpServer *http.Server
	if s.config.Status.Enabled {
		httpServer = &http.Server{Addr: s.config.Status.Address, Handler: s.status, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			s.logger.Info("status endpoint listening", "address", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("status endpoint stopped", "error", err)
			}
		}()
	}
	err := s.scheduler.Run(ctx)
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = httpServer.Shutdown(shutdownCtx)
		cancel()
	}
	closeErr := s.Close(context.Background())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return errors.Join(err, closeErr)
}

// Close stops event listeners and flushes pending spans.
func (s *Service) Close(ctx context.Context) error {
	if s.events != nil {
		s.events.Close()
	}
	if s.config.Tracing.Enabled {
		return tracing.Flush(ctx)
	}
	return nil
}
