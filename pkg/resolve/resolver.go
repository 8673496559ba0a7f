// Package resolve lazily creates the container entities (releases,
// iterations) an artifact references before the artifact itself can be
// written. Lookup is three-tiered: the persisted ledger, then the
// run-local buffer of containers created earlier in the same run, then
// creation on the target system. Creation on the remote side is not
// immediately consistent, so a bounded backoff poll waits for the new
// container to become visible before the artifact proceeds.
package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/logging"
)

// CreateFunc creates the missing container on the target system and
// returns the external key to correlate it under.
type CreateFunc func(ctx context.Context) (externalKey string, err error)

// VisibleFunc reports whether a created container has become visible on
// the target system. A nil VisibleFunc marks the target as immediately
// consistent and skips polling.
type VisibleFunc func(ctx context.Context) (visible bool, err error)

// Resolver performs three-tier container resolution against one ledger and
// one run-local buffer.
type Resolver struct {
	ledger *ledger.Ledger
	buffer *ledger.Buffer

	pollBase time.Duration
	pollCap  time.Duration
	budget   time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPollInterval sets the initial backoff interval for the visibility
// poll.
func WithPollInterval(d time.Duration) Option {
	return func(r *Resolver) { r.pollBase = d }
}

// WithPollBudget sets the total time the visibility poll may consume
// before failing the surrounding artifact.
func WithPollBudget(d time.Duration) Option {
	return func(r *Resolver) { r.budget = d }
}

// New creates a Resolver. The poll defaults are 500ms initial interval,
// doubling to a 5s cap, within a 30s total budget.
func New(l *ledger.Ledger, buffer *ledger.Buffer, opts ...Option) *Resolver {
	r := &Resolver{
		ledger:   l,
		buffer:   buffer,
		pollBase: 500 * time.Millisecond,
		pollCap:  5 * time.Second,
		budget:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup runs the first two tiers: persisted ledger, then run-local
// buffer. A NotFound result is expected control flow, not an error, and is
// deliberately not logged.
func (r *Resolver) Lookup(scope ledger.Scope, projectID, internalID int) Resolution {
	if entry, ok := r.ledger.FindByInternalID(scope, projectID, internalID); ok {
		return Resolution{State: Found, Entry: entry}
	}
	if entry, ok := r.buffer.FindByInternalID(scope, projectID, internalID); ok {
		return Resolution{State: PendingThisRun, Entry: entry}
	}
	return Resolution{State: NotFound}
}

// Ensure resolves a container, creating it on the target system when both
// lookup tiers miss. The new correlation is recorded in the run-local
// buffer so a second artifact referencing the same container within this
// run reuses it instead of creating a duplicate.
func (r *Resolver) Ensure(ctx context.Context, scope ledger.Scope, projectID, internalID int, create CreateFunc, visible VisibleFunc) (ledger.Entry, error) {
	if res := r.Lookup(scope, projectID, internalID); res.Exists() {
		return res.Entry, nil
	}

	externalKey, err := create(ctx)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("creating %s container %d: %w", scope, internalID, err)
	}

	if visible != nil {
		if err := r.awaitVisible(ctx, scope, externalKey, visible); err != nil {
			return ledger.Entry{}, err
		}
	}

	entry := ledger.Entry{
		ProjectID:   projectID,
		InternalID:  internalID,
		ExternalKey: externalKey,
		Primary:     true,
	}
	r.buffer.Add(scope, entry)

	logging.Ctx(ctx).Info().
		Str("scope", scope.String()).
		Int("internal_id", internalID).
		Str("external_key", externalKey).
		Msg("created missing container")

	return entry, nil
}

// LookupByExternalKey runs the first two tiers keyed by external key, for
// the remote-to-local direction where the local id is not yet known.
func (r *Resolver) LookupByExternalKey(scope ledger.Scope, projectID int, externalKey string) Resolution {
	if entry, ok := r.ledger.FindByExternalKey(scope, projectID, externalKey, false); ok {
		return Resolution{State: Found, Entry: entry}
	}
	if entry, ok := r.buffer.FindByExternalKey(scope, projectID, externalKey); ok {
		return Resolution{State: PendingThisRun, Entry: entry}
	}
	return Resolution{State: NotFound}
}

// CreateLocalFunc creates the missing container on the local system and
// returns the internal id to correlate it under.
type CreateLocalFunc func(ctx context.Context) (internalID int, err error)

// EnsureLocal is Ensure for the remote-to-local direction: the external
// key is known, the local container may need creating. The local system is
// immediately consistent, so there is no visibility poll.
func (r *Resolver) EnsureLocal(ctx context.Context, scope ledger.Scope, projectID int, externalKey string, create CreateLocalFunc) (ledger.Entry, error) {
	if res := r.LookupByExternalKey(scope, projectID, externalKey); res.Exists() {
		return res.Entry, nil
	}

	internalID, err := create(ctx)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("creating local %s container for %q: %w", scope, externalKey, err)
	}

	entry := ledger.Entry{
		ProjectID:   projectID,
		InternalID:  internalID,
		ExternalKey: externalKey,
		Primary:     true,
	}
	r.buffer.Add(scope, entry)

	logging.Ctx(ctx).Info().
		Str("scope", scope.String()).
		Int("internal_id", internalID).
		Str("external_key", externalKey).
		Msg("created missing local container")

	return entry, nil
}

// awaitVisible polls until the created container is observable, backing
// off exponentially within the budget.
func (r *Resolver) awaitVisible(ctx context.Context, scope ledger.Scope, externalKey string, visible VisibleFunc) error {
	deadline := time.Now().Add(r.budget)
	interval := r.pollBase

	for {
		ok, err := visible(ctx)
		if err != nil {
			return fmt.Errorf("polling %s container %q: %w", scope, externalKey, err)
		}
		if ok {
			return nil
		}
		if time.Now().Add(interval).After(deadline) {
			return errors.NewTimeoutError(
				fmt.Sprintf("%s container visibility poll", scope),
				r.budget.String(),
				fmt.Sprintf("container %q never became visible", externalKey),
			)
		}

		select {
		case <-ctx.Done():
			return errors.ErrCanceled
		case <-time.After(interval):
		}

		interval *= 2
		if interval > r.pollCap {
			interval = r.pollCap
		}
	}
}
