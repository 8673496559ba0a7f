package engine

import (
	"context"
	"strconv"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/logging"
	"github.com/agentstation/syncbridge/pkg/reconcile"
	"github.com/agentstation/syncbridge/pkg/resolve"
	"github.com/agentstation/syncbridge/pkg/trackers"
	"github.com/agentstation/syncbridge/pkg/translate"
)

// pullNewItem creates a local artifact for a remote item that has no
// correlation yet. Items of types outside the synchronized set are
// skipped. The composite status mapping is required; priority and owner
// degrade to warnings. Container references resolve through the reverse
// direction, which needs no visibility poll since the local system is
// immediately consistent.
func (e *Engine) pullNewItem(ctx context.Context, p ProjectMapping, item *trackers.Item, resolver *resolve.Resolver, buffer *ledger.Buffer, pr *ProjectResult, result *Result) error {
	log := logging.Ctx(ctx)

	kind, ok := e.kindForItem(p, item)
	if !ok {
		return nil
	}
	if e.opts.OnlyKind != "" && kind != e.opts.OnlyKind {
		return nil
	}

	scope := artifactScope(kind)
	key := strconv.Itoa(item.ID)
	if _, ok := e.ledger.FindByExternalKey(scope, p.LocalID, key, false); ok {
		// Already correlated; the pair pass handles changed items.
		return nil
	}
	if _, ok := buffer.FindByExternalKey(scope, p.LocalID, key); ok {
		return nil
	}

	statusID, err := e.translator.StatusToLocal(p.LocalID,
		item.FieldString(trackers.FieldState), item.FieldString(trackers.FieldReason))
	if err != nil {
		return errors.WrapArtifact(p.LocalID, 0, trackers.FieldState, err)
	}

	a := trackers.Artifact{
		ProjectID:   p.LocalID,
		Kind:        kind,
		Name:        item.FieldString(trackers.FieldTitle),
		Description: item.FieldString(trackers.FieldDescription),
		StatusID:    statusID,
	}

	// The two kind defaults need no entry in the type table, so a miss
	// here just leaves the type at the local default.
	if id, err := e.translator.ToLocalAny(ledger.ScopeType, p.LocalID, item.Type); err == nil {
		a.TypeID = id
	}

	if key := e.remotePriorityKey(item); key != "" {
		if id, err := e.translator.ToLocalAny(ledger.ScopePriority, p.LocalID, key); err == nil {
			a.PriorityID = id
		} else {
			log.Warn().Err(err).Str("priority", key).Msg("priority not mapped, left at local default")
			result.warnf("project %d item %d: %s", p.LocalID, item.ID, err)
		}
	}

	if login := item.FieldString(trackers.FieldAssignedTo); login != "" {
		if id, ok := e.localOwner(ctx, login, result); ok {
			a.OwnerID = id
		}
	}

	if item.IterationID != 0 {
		entry, err := e.ensureLocalRelease(ctx, p, item.IterationID, resolver)
		if err != nil {
			return errors.WrapArtifact(p.LocalID, 0, "release", err)
		}
		a.ResolvedReleaseID = entry.InternalID
	}

	e.applyCustomFromRemote(ctx, p, item, &a, result)

	created, err := e.local.Create(ctx, a)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, 0, "", err)
	}

	buffer.Add(scope, ledger.Entry{
		ProjectID:   p.LocalID,
		InternalID:  created.ID,
		ExternalKey: key,
		Primary:     true,
	})
	pr.CreatedLocal++

	log.Info().Int("artifact_id", created.ID).Str("kind", kind.String()).Msg("created local artifact")
	return nil
}

// applyRemoteToLocal writes the remote item's state wholesale onto the
// local artifact. A clean diff means no local write.
func (e *Engine) applyRemoteToLocal(ctx context.Context, p ProjectMapping, pair *reconcile.Pair, resolver *resolve.Resolver, pr *ProjectResult) error {
	log := logging.Ctx(ctx)
	a, item := pair.Local, pair.Remote

	pair.Changes.Set("name", a.Name, item.FieldString(trackers.FieldTitle))
	pair.Changes.Set("description", a.Description, item.FieldString(trackers.FieldDescription))

	statusID, err := e.translator.StatusToLocal(p.LocalID,
		item.FieldString(trackers.FieldState), item.FieldString(trackers.FieldReason))
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, trackers.FieldState, err)
	}
	pair.Changes.Set("status_id", a.StatusID, statusID)

	if id, err := e.translator.ToLocalAny(ledger.ScopeType, p.LocalID, item.Type); err == nil {
		pair.Changes.Set("type_id", a.TypeID, id)
	}

	if key := e.remotePriorityKey(item); key != "" {
		if id, err := e.translator.ToLocalAny(ledger.ScopePriority, p.LocalID, key); err == nil {
			pair.Changes.Set("priority_id", a.PriorityID, id)
		} else {
			log.Warn().Err(err).Str("priority", key).Msg("priority not mapped, left unchanged")
		}
	}

	if login := item.FieldString(trackers.FieldAssignedTo); login != "" {
		if id, ok := e.localOwner(ctx, login, nil); ok {
			pair.Changes.Set("owner_id", a.OwnerID, id)
		}
	}

	if item.IterationID != 0 {
		entry, err := e.ensureLocalRelease(ctx, p, item.IterationID, resolver)
		if err != nil {
			return errors.WrapArtifact(p.LocalID, a.ID, "release", err)
		}
		pair.Changes.Set("release_id", a.ResolvedReleaseID, entry.InternalID)
	}

	e.diffCustomFromRemote(p, item, a, pair.Changes)

	if !pair.Dirty() {
		pr.Skipped++
		return nil
	}

	pair.Changes.Apply(func(field string, desired any) {
		switch field {
		case "name":
			a.Name = desired.(string)
		case "description":
			a.Description = desired.(string)
		case "status_id":
			a.StatusID = desired.(int)
		case "type_id":
			a.TypeID = desired.(int)
		case "priority_id":
			a.PriorityID = desired.(int)
		case "owner_id":
			a.OwnerID = desired.(int)
		case "release_id":
			a.ResolvedReleaseID = desired.(int)
		default:
			applySlotChange(a, field, desired)
		}
	})

	if err := e.local.Update(ctx, *a); err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, "", err)
	}

	pr.UpdatedLocal++
	log.Info().Str("changes", pair.Changes.String()).Msg("updated local artifact")
	return nil
}

// applyCustomFromRemote fills a new local artifact's custom property slots
// from the mapped remote fields.
func (e *Engine) applyCustomFromRemote(ctx context.Context, p ProjectMapping, item *trackers.Item, a *trackers.Artifact, result *Result) {
	log := logging.Ctx(ctx)

	for _, slot := range e.opts.Properties.Slots() {
		field, _ := e.opts.Properties.RemoteField(slot)

		switch {
		case translate.IsTextSlot(slot):
			if v := item.FieldString(field); v != "" {
				a.SetTextProp(slot, v)
			}
		case translate.IsListSlot(slot):
			key := item.FieldString(field)
			if key == "" {
				continue
			}
			id, err := e.translator.ListValueToLocal(p.LocalID, translate.SlotNumber(slot), key)
			if err != nil {
				log.Warn().Err(err).Str("slot", string(slot)).Str("value", key).Msg("list value not mapped, slot skipped")
				if result != nil {
					result.warnf("project %d item %d: %s", p.LocalID, item.ID, err)
				}
				continue
			}
			a.SetListProp(slot, id)
		}
	}
}

// diffCustomFromRemote records custom property differences for an existing
// pair. Slot changes route through applySlotChange on apply.
func (e *Engine) diffCustomFromRemote(p ProjectMapping, item *trackers.Item, a *trackers.Artifact, changes *reconcile.Changes) {
	for _, slot := range e.opts.Properties.Slots() {
		field, _ := e.opts.Properties.RemoteField(slot)

		switch {
		case translate.IsTextSlot(slot):
			changes.Set(string(slot), a.TextProp(slot), item.FieldString(field))
		case translate.IsListSlot(slot):
			key := item.FieldString(field)
			if key == "" {
				continue
			}
			id, err := e.translator.ListValueToLocal(p.LocalID, translate.SlotNumber(slot), key)
			if err != nil {
				continue
			}
			current, _ := a.ListProp(slot)
			changes.Set(string(slot), current, id)
		}
	}
}

// applySlotChange writes a diffed custom property value back to its slot.
func applySlotChange(a *trackers.Artifact, field string, desired any) {
	slot := trackers.Slot(field)
	switch {
	case translate.IsTextSlot(slot):
		if v, ok := desired.(string); ok {
			a.SetTextProp(slot, v)
		}
	case translate.IsListSlot(slot):
		if v, ok := desired.(int); ok {
			a.SetListProp(slot, v)
		}
	}
}

// ensureLocalRelease resolves a remote iteration node to a local release,
// creating the release under the node's name when it does not exist yet.
func (e *Engine) ensureLocalRelease(ctx context.Context, p ProjectMapping, nodeID int, resolver *resolve.Resolver) (ledger.Entry, error) {
	return resolver.EnsureLocal(ctx, ledger.ScopeRelease, p.LocalID, strconv.Itoa(nodeID),
		func(ctx context.Context) (int, error) {
			node, err := e.remote.NodeByID(ctx, p.Remote, nodeID)
			if err != nil {
				return 0, err
			}
			if node == nil {
				return 0, errors.NewNotFoundError("iteration node", strconv.Itoa(nodeID))
			}
			return e.local.CreateRelease(ctx, p.LocalID, node.Name)
		},
	)
}

// localOwner resolves a remote login to the local user id, auto-mapping by
// identical login when enabled. A miss degrades to unowned.
func (e *Engine) localOwner(ctx context.Context, login string, result *Result) (int, bool) {
	log := logging.Ctx(ctx)

	if id, err := e.translator.UserToLocal(login); err == nil {
		return id, true
	}

	if e.opts.AutoMapUsers {
		id, err := e.local.UserByLogin(ctx, login)
		if err == nil && id != 0 {
			entry := ledger.Entry{InternalID: id, ExternalKey: login, Primary: true}
			if err := e.ledger.RecordNew(ctx, ledger.ScopeUser, []ledger.Entry{entry}); err != nil {
				log.Warn().Err(err).Str("login", login).Msg("recording auto user mapping")
			} else {
				log.Info().Int("user_id", id).Str("login", login).Msg("auto-mapped user by login")
				return id, true
			}
		}
	}

	log.Warn().Str("login", login).Msg("owner not mapped, artifact left unowned")
	if result != nil {
		result.warnf("remote owner %q not mapped, artifact left unowned", login)
	}
	return 0, false
}

// remotePriorityKey reads the priority field coerced to its ledger key
// form. Remote trackers report it as either a string or a number.
func (e *Engine) remotePriorityKey(item *trackers.Item) string {
	switch v := item.Field(e.opts.PriorityField).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.Itoa(int(v))
	default:
		return ""
	}
}
