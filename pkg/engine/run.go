package engine

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/logging"
	"github.com/agentstation/syncbridge/pkg/reconcile"
	"github.com/agentstation/syncbridge/pkg/resolve"
	"github.com/agentstation/syncbridge/pkg/trackers"
)

// Run executes one reconciliation pass. lastSync is the server timestamp
// the previous run completed with; serverTime is the current one and
// becomes the next run's lastSync. Authentication failure against either
// tracker aborts the whole run; a failure scoped to one project or one
// artifact is logged and skipped.
func (e *Engine) Run(ctx context.Context, lastSync, serverTime time.Time) (*Result, error) {
	result := newResult(lastSync, serverTime)
	ctx = logging.WithRunID(ctx, result.RunID)
	log := logging.Ctx(ctx)

	log.Info().
		Time("last_sync", lastSync).
		Time("server_time", serverTime).
		Int("projects", len(e.opts.Projects)).
		Msg("run started")

	if err := e.local.Authenticate(ctx); err != nil {
		authErr := errors.NewAuthenticationError("local", "authentication rejected", err)
		result.errorf("%s", authErr)
		result.finish()
		return result, authErr
	}
	if err := e.remote.Authenticate(ctx); err != nil {
		authErr := errors.NewAuthenticationError("remote", "authentication rejected", err)
		result.errorf("%s", authErr)
		result.finish()
		return result, authErr
	}

	if err := e.ledger.Load(ctx, e.scopes()...); err != nil {
		result.errorf("loading correlation ledger: %s", err)
		result.finish()
		return result, err
	}

	for _, p := range e.opts.Projects {
		pctx := logging.WithProject(ctx, p.LocalID)

		if err := e.remote.OpenProject(pctx, p.Remote); err != nil {
			perr := errors.NewProjectError(p.LocalID, "opening remote project "+p.Remote, err)
			logging.Ctx(pctx).Error().Err(err).Str("remote_project", p.Remote).Msg("skipping project")
			result.errorf("%s", perr)
			continue
		}

		e.syncProject(pctx, p, result)
	}

	result.finish()
	log.Info().
		Str("status", result.Status.String()).
		Dur("duration", result.Duration).
		Msg(result.Summary())
	return result, nil
}

// syncProject runs the four phases for one project pair. Artifact-level
// failures are logged and skipped; a store failure at the checkpoint fails
// the project, since the pair pass must not run against a stale ledger.
func (e *Engine) syncProject(ctx context.Context, p ProjectMapping, result *Result) {
	log := logging.Ctx(ctx)
	pr := result.project(p.LocalID, p.Remote)

	buffer := ledger.NewBuffer()
	resolver := resolve.New(e.ledger, buffer,
		resolve.WithPollInterval(e.opts.PollInterval),
		resolve.WithPollBudget(e.opts.PollBudget),
	)

	// Phase one: artifacts created locally since the last run.
	for _, kind := range e.kinds() {
		artifacts, err := e.local.ListNewSince(ctx, p.LocalID, kind, result.LastSync)
		if err != nil {
			log.Error().Err(err).Str("kind", kind.String()).Msg("listing new local artifacts")
			result.errorf("%s", errors.WrapProject(p.LocalID, err))
			return
		}
		sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].ID < artifacts[j].ID })

		for i := range artifacts {
			a := artifacts[i]
			actx := logging.WithArtifact(ctx, a.ID)
			if err := e.pushNewArtifact(actx, p, &a, resolver, buffer, pr, result); err != nil {
				logging.Ctx(actx).Error().Err(err).Str("kind", kind.String()).Msg("pushing new artifact")
				result.warnf("%s", err)
			}
		}
	}

	// Phase two: items created remotely since the last run.
	items, err := e.remote.QueryChangedSince(ctx, p.Remote, result.LastSync)
	if err != nil {
		log.Error().Err(err).Msg("querying changed remote items")
		result.errorf("%s", errors.WrapProject(p.LocalID, err))
		return
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	for i := range items {
		it := items[i]
		ictx := logging.WithItem(ctx, it.ID)
		if err := e.pullNewItem(ictx, p, &it, resolver, buffer, pr, result); err != nil {
			logging.Ctx(ictx).Error().Err(err).Str("item_type", it.Type).Msg("pulling new item")
			result.warnf("%s", err)
		}
	}

	// Pairs correlated during the creation phases are already in sync;
	// phase three must not run them through conflict resolution, or the
	// fresh write timestamps would trigger an immediate write-back.
	createdThisRun := make(map[ledger.Scope]map[int]bool)
	for _, kind := range e.kinds() {
		scope := artifactScope(kind)
		created := make(map[int]bool)
		for _, entry := range buffer.Entries(scope) {
			created[entry.InternalID] = true
		}
		createdThisRun[scope] = created
	}

	// Checkpoint: persist the correlations buffered during the creation
	// phases, then reload so the pair pass sees them.
	if err := buffer.Drain(ctx, e.ledger); err != nil {
		log.Error().Err(err).Msg("persisting buffered correlations")
		result.errorf("%s", errors.WrapProject(p.LocalID, err))
		return
	}
	if err := e.ledger.Refresh(ctx, e.scopes()...); err != nil {
		log.Error().Err(err).Msg("refreshing correlation ledger")
		result.errorf("%s", errors.WrapProject(p.LocalID, err))
		return
	}

	// Phase three: reconcile every correlated pair.
	for _, kind := range e.kinds() {
		scope := artifactScope(kind)
		for _, entry := range e.ledger.Entries(scope) {
			if entry.ProjectID != p.LocalID || !entry.Primary {
				continue
			}
			if createdThisRun[scope][entry.InternalID] {
				continue
			}
			actx := logging.WithArtifact(ctx, entry.InternalID)
			if err := e.reconcilePair(actx, p, kind, entry, resolver, pr, result); err != nil {
				logging.Ctx(actx).Error().Err(err).Str("kind", kind.String()).Msg("reconciling pair")
				result.warnf("%s", err)
			}
		}
	}
}

// reconcilePair loads both sides of a correlated pair, decides the write
// direction, and applies the winner's state wholesale to the loser.
func (e *Engine) reconcilePair(ctx context.Context, p ProjectMapping, kind trackers.Kind, entry ledger.Entry, resolver *resolve.Resolver, pr *ProjectResult, result *Result) error {
	log := logging.Ctx(ctx)

	local, err := e.local.GetByID(ctx, p.LocalID, entry.InternalID, kind)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, entry.InternalID, "", err)
	}
	itemID, err := strconv.Atoi(entry.ExternalKey)
	if err != nil {
		return errors.NewArtifactError(p.LocalID, entry.InternalID, "", "malformed external key "+entry.ExternalKey, err)
	}
	remote, err := e.remote.GetByID(ctx, itemID)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, entry.InternalID, "", err)
	}
	if local == nil || remote == nil {
		// One side no longer exists; nothing to reconcile.
		log.Debug().Bool("local_present", local != nil).Bool("remote_present", remote != nil).Msg("pair incomplete, skipping")
		pr.Skipped++
		return nil
	}

	direction := reconcile.Decide(remote.ChangedAt, local.UpdatedAt, result.LastSync, e.opts.ClockOffset, e.opts.GuardWindow)
	if direction == reconcile.DirectionNone {
		pr.Skipped++
		return nil
	}

	pair := reconcile.NewPair(local, remote, direction)
	switch direction {
	case reconcile.DirectionLocalWins:
		return e.applyLocalToRemote(ctx, p, pair, resolver, pr)
	case reconcile.DirectionRemoteWins:
		return e.applyRemoteToLocal(ctx, p, pair, resolver, pr)
	}
	return nil
}
