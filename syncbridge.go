// Package syncbridge keeps two issue trackers in step: a local record
// system holding artifacts and a remote work item tracker. Each run pushes
// artifacts new on one side to the other, then reconciles every correlated
// pair with whole-artifact last-writer-wins resolution. The package-level
// facade wraps the engine with scheduling and completion hooks; callers
// needing finer control use pkg/engine directly.
package syncbridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentstation/syncbridge/pkg/engine"
	"github.com/agentstation/syncbridge/pkg/logging"
)

// Syncbridge manages reconciliation runs with scheduling and event hooks.
type Syncbridge interface {
	// Sync triggers one reconciliation run. The last-sync watermark is
	// carried forward automatically between runs.
	Sync(ctx context.Context) (*engine.Result, error)

	// ScheduleOn begins periodic runs at the configured interval.
	ScheduleOn() error

	// ScheduleOff stops periodic runs.
	ScheduleOff() error

	// LastSync returns the current watermark: the server timestamp the
	// most recent successful run completed with.
	LastSync() time.Time

	// OnRunCompleted registers a callback invoked after every run.
	OnRunCompleted(RunCompletedHook)
}

// syncbridge is the internal implementation of the Syncbridge interface.
type syncbridge struct {
	mu       sync.RWMutex
	engine   *engine.Engine
	config   *config
	lastSync time.Time

	ticker *time.Ticker
	stopCh chan struct{}

	hooks *hooks
}

// New creates a Syncbridge instance with the given options. The trackers
// option is required.
func New(opts ...Option) (Syncbridge, error) {
	s := &syncbridge{
		config: defaultConfig(),
		stopCh: make(chan struct{}),
		hooks:  newHooks(),
	}

	for _, opt := range opts {
		if err := opt(s.config); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if s.config.local == nil || s.config.remote == nil {
		return nil, fmt.Errorf("both trackers are required")
	}

	e, err := engine.New(s.config.local, s.config.remote, s.config.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	s.engine = e
	s.lastSync = s.config.initialLastSync

	return s, nil
}

// Sync triggers one reconciliation run.
func (s *syncbridge) Sync(ctx context.Context) (*engine.Result, error) {
	s.mu.RLock()
	lastSync := s.lastSync
	s.mu.RUnlock()

	serverTime := s.config.now()
	result, err := s.engine.Run(ctx, lastSync, serverTime)

	if err == nil && result.Status != engine.StatusError {
		// Advance the watermark only on a usable run, so a failed run's
		// window is retried in full next time.
		s.mu.Lock()
		s.lastSync = result.ServerTime
		s.mu.Unlock()
	}

	s.hooks.triggerRunCompleted(result)
	return result, err
}

// ScheduleOn begins periodic runs at the configured interval.
func (s *syncbridge) ScheduleOn() error {
	if s.config.interval <= 0 {
		return fmt.Errorf("schedule interval must be positive")
	}

	s.ticker = time.NewTicker(s.config.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				if _, err := s.Sync(context.Background()); err != nil {
					logging.Default().Error().Err(err).Msg("scheduled run failed")
				}
			case <-s.stopCh:
				return
			}
		}
	}()

	return nil
}

// ScheduleOff stops periodic runs.
func (s *syncbridge) ScheduleOff() error {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	select {
	case <-s.stopCh:
		// Already closed.
	default:
		close(s.stopCh)
	}
	return nil
}

// LastSync returns the current watermark.
func (s *syncbridge) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// OnRunCompleted registers a callback invoked after every run.
func (s *syncbridge) OnRunCompleted(hook RunCompletedHook) {
	s.hooks.onRunCompleted(hook)
}
