package syncbridge

import (
	"fmt"
	"time"

	"github.com/agentstation/syncbridge/pkg/engine"
	"github.com/agentstation/syncbridge/pkg/trackers"
)

// config holds the facade-level configuration assembled from options.
type config struct {
	local  trackers.LocalTracker
	remote trackers.RemoteTracker

	engineOpts      []engine.Option
	interval        time.Duration
	initialLastSync time.Time
	now             func() time.Time
}

func defaultConfig() *config {
	return &config{
		interval: time.Hour,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Option configures a Syncbridge instance.
type Option func(*config) error

// WithTrackers sets the two tracker adapters. Required.
func WithTrackers(local trackers.LocalTracker, remote trackers.RemoteTracker) Option {
	return func(c *config) error {
		if local == nil || remote == nil {
			return fmt.Errorf("both trackers are required")
		}
		c.local = local
		c.remote = remote
		return nil
	}
}

// WithEngineOptions forwards options to the underlying engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(c *config) error {
		c.engineOpts = append(c.engineOpts, opts...)
		return nil
	}
}

// WithScheduleInterval sets the period for scheduled runs.
func WithScheduleInterval(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return fmt.Errorf("schedule interval must be positive")
		}
		c.interval = d
		return nil
	}
}

// WithInitialLastSync seeds the watermark, typically from persisted state
// of a previous process.
func WithInitialLastSync(t time.Time) Option {
	return func(c *config) error {
		c.initialLastSync = t
		return nil
	}
}

// WithClock overrides the time source. Tests use this to pin server time.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return fmt.Errorf("clock function must not be nil")
		}
		c.now = now
		return nil
	}
}
