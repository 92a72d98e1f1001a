package event

import (
	"log/slog"
	"time"

	"github.com/viant/flightcore/service/messaging/fs"
	"github.com/viant/flightcore/service/messaging/memory"
)

type Option func(s *Service)

// WithFsQueueConfig sets the per queue file system configuration.
func WithFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithMemoryQueueConfig sets the per queue memory configuration.
func WithMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}

// WithLogger sets the logger used by listeners.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPollInterval sets how long a listener waits after finding its queue empty.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		s.pollInterval = d
	}
}
