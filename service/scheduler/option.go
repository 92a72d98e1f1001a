package scheduler

import (
	"log/slog"
	"time"

	"github.com/viant/flightcore/internal/clock"
)

// Option configures a Scheduler.
type Option func(s *Scheduler)

// WithConfig replaces the whole sizing configuration.
func WithConfig(config Config) Option {
	return func(s *Scheduler) {
		s.config = config
	}
}

// WithMaxTasks sets the task table capacity.
func WithMaxTasks(n int) Option {
	return func(s *Scheduler) {
		s.config.MaxTasks = n
	}
}

// WithMaxCallDepth sets the per task continuation depth.
func WithMaxCallDepth(n int) Option {
	return func(s *Scheduler) {
		s.config.MaxCallDepth = n
	}
}

// WithMailboxSize sets the number of WakeAsync requests that can be pending.
func WithMailboxSize(n int) Option {
	return func(s *Scheduler) {
		s.config.MailboxSize = n
	}
}

// WithIdlePoll sets how long Run idles when no task is ready.
func WithIdlePoll(d time.Duration) Option {
	return func(s *Scheduler) {
		s.config.IdlePoll = d
	}
}

// WithTimeSource initialises the scheduler with src, equivalent to calling Init.
func WithTimeSource(src clock.Source) Option {
	return func(s *Scheduler) {
		s.now = src
	}
}

// WithLogger sets the logger; records carry component=scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithObserver registers a transition observer.
func WithObserver(observer Observer) Option {
	return func(s *Scheduler) {
		s.observer = observer
	}
}

// WithTracing wraps every dispatch in a tracing span.
func WithTracing(enabled bool) Option {
	return func(s *Scheduler) {
		s.tracing = enabled
	}
}

// WithID sets the scheduler instance identifier; by default one is generated.
func WithID(id string) Option {
	return func(s *Scheduler) {
		if id != "" {
			s.id = id
		}
	}
}
