package scheduler

import (
	"fmt"
	"time"
)

// Config sizes the scheduler. Every table and queue is allocated from it
// once, in New.
type Config struct {
	// MaxTasks is the task table capacity.
	MaxTasks int `json:"maxTasks" yaml:"maxTasks"`
	// MaxCallDepth bounds the nesting of suspension-capable calls per task.
	MaxCallDepth int `json:"maxCallDepth" yaml:"maxCallDepth"`
	// MailboxSize bounds pending WakeAsync requests.
	MailboxSize int `json:"mailboxSize" yaml:"mailboxSize"`
	// IdlePoll is how long Run waits for a wake request when nothing is ready.
	IdlePoll time.Duration `json:"idlePoll" yaml:"idlePoll"`
}

// DefaultConfig returns the default sizing.
func DefaultConfig() Config {
	return Config{
		MaxTasks:     16,
		MaxCallDepth: 8,
		MailboxSize:  32,
		IdlePoll:     time.Millisecond,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.MaxTasks <= 0 {
		return fmt.Errorf("scheduler.maxTasks must be > 0")
	}
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("scheduler.maxCallDepth must be > 0")
	}
	if c.MailboxSize <= 0 {
		return fmt.Errorf("scheduler.mailboxSize must be > 0")
	}
	if c.IdlePoll <= 0 {
		return fmt.Errorf("scheduler.idlePoll must be > 0")
	}
	return nil
}

// withDefaults replaces non-positive settings with defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxTasks <= 0 {
		c.MaxTasks = def.MaxTasks
	}
	if c.MaxCallDepth <= 0 {
		c.MaxCallDepth = def.MaxCallDepth
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = def.MailboxSize
	}
	if c.IdlePoll <= 0 {
		c.IdlePoll = def.IdlePoll
	}
	return c
}
