package flightcore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/flightcore/service/messaging"
	"github.com/viant/flightcore/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. The
// zero-value of a nested section inherits its package defaults.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	// TickResolution is the wall time of one scheduler tick.
	TickResolution time.Duration `json:"tickResolution" yaml:"tickResolution"`
	Logging        LoggingConfig `json:"logging" yaml:"logging"`
	Events         EventsConfig  `json:"events" yaml:"events"`
	Tracing        TracingConfig `json:"tracing" yaml:"tracing"`
	Status         StatusConfig  `json:"status" yaml:"status"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// EventsConfig controls lifecycle event publishing.
type EventsConfig struct {
	Enabled bool             `json:"enabled" yaml:"enabled"`
	Vendor  messaging.Vendor `json:"vendor" yaml:"vendor"`
	// BasePath is the journal root for the fs vendor.
	BasePath string `json:"basePath" yaml:"basePath"`
	// PublishTimeout bounds how long dispatch waits on a full event queue.
	PublishTimeout time.Duration `json:"publishTimeout" yaml:"publishTimeout"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	// OutputFile receives spans; empty means stdout.
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// StatusConfig controls the read-only HTTP status endpoint.
type StatusConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Scheduler:      scheduler.DefaultConfig(),
		TickResolution: time.Millisecond,
		Logging:        LoggingConfig{Level: "info", Format: "text"},
		Events: EventsConfig{
			Vendor:         messaging.VendorMemory,
			PublishTimeout: 10 * time.Millisecond,
		},
		Tracing: TracingConfig{ServiceName: "flightcore"},
		Status:  StatusConfig{Address: "127.0.0.1:8086"},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if c.TickResolution <= 0 {
		return fmt.Errorf("tickResolution must be > 0")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported", c.Logging.Format)
	}
	if c.Events.Enabled {
		switch c.Events.Vendor {
		case messaging.VendorMemory:
		case messaging.VendorFs:
			if c.Events.BasePath == "" {
				return fmt.Errorf("events.basePath is required for the fs vendor")
			}
		default:
			return fmt.Errorf("events.vendor %q is not supported", c.Events.Vendor)
		}
		if c.Events.PublishTimeout <= 0 {
			return fmt.Errorf("events.publishTimeout must be > 0")
		}
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return fmt.Errorf("tracing.serviceName is required")
	}
	if c.Status.Enabled && c.Status.Address == "" {
		return fmt.Errorf("status.address is required")
	}
	return nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig downloads YAML from URL (any afs supported scheme) and parses it.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	return ParseConfig(data)
}
