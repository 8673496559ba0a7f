package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/htmltext"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/logging"
	"github.com/agentstation/syncbridge/pkg/reconcile"
	"github.com/agentstation/syncbridge/pkg/resolve"
	"github.com/agentstation/syncbridge/pkg/trackers"
	"github.com/agentstation/syncbridge/pkg/translate"
)

// pushNewArtifact creates a remote item for an artifact that exists only
// locally. Containers the artifact references are resolved first, so a
// container failure aborts before anything is written remotely. The status
// mapping is required; priority and owner are optional and degrade to a
// warning. State and reason are promoted in a second save because the
// remote tracker forces defaults on create.
func (e *Engine) pushNewArtifact(ctx context.Context, p ProjectMapping, a *trackers.Artifact, resolver *resolve.Resolver, buffer *ledger.Buffer, pr *ProjectResult, result *Result) error {
	log := logging.Ctx(ctx)
	scope := artifactScope(a.Kind)

	if _, ok := e.ledger.FindByInternalID(scope, p.LocalID, a.ID); ok {
		return nil
	}
	if _, ok := buffer.FindByInternalID(scope, p.LocalID, a.ID); ok {
		return nil
	}

	state, reason, err := e.translator.StatusToRemote(p.LocalID, a.StatusID)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, trackers.FieldState, err)
	}

	iterationID := 0
	if releaseID, ok := a.ReleaseRef(); ok {
		entry, err := e.ensureRemoteRelease(ctx, p, releaseID, resolver)
		if err != nil {
			return errors.WrapArtifact(p.LocalID, a.ID, "release", err)
		}
		iterationID, err = strconv.Atoi(entry.ExternalKey)
		if err != nil {
			return errors.NewArtifactError(p.LocalID, a.ID, "release", "malformed container key "+entry.ExternalKey, err)
		}
	}

	fields := map[string]any{
		trackers.FieldTitle:       a.Name,
		trackers.FieldDescription: htmltext.Normalize(a.Description),
	}

	if key, err := e.translator.ToRemote(ledger.ScopePriority, p.LocalID, a.PriorityID); err == nil {
		fields[e.opts.PriorityField] = key
	} else if a.PriorityID != 0 {
		log.Warn().Err(err).Int("priority_id", a.PriorityID).Msg("priority not mapped, left at remote default")
		result.warnf("project %d artifact %d: %s", p.LocalID, a.ID, err)
	}

	if a.OwnerID != 0 {
		if login, ok := e.remoteOwner(ctx, a.OwnerID, result); ok {
			fields[trackers.FieldAssignedTo] = login
		}
	}

	e.applyCustomProperties(ctx, p, a, nil, nil, fields, result)

	itemType, err := e.remoteItemType(p, a)
	if err != nil {
		log.Warn().Err(err).Int("type_id", a.TypeID).Str("fallback", itemType).Msg("type not mapped, kind default used")
		result.warnf("project %d artifact %d: %s", p.LocalID, a.ID, err)
	}

	item, err := e.remote.Create(ctx, p.Remote, itemType, fields)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, "", err)
	}
	if iterationID != 0 {
		item.IterationID = iterationID
	}

	// The create lands in the type's default state. Promote to the mapped
	// state and reason; a rejection here leaves a usable item behind, so it
	// degrades to a warning rather than failing the artifact.
	item.SetField(trackers.FieldState, state)
	item.SetField(trackers.FieldReason, reason)
	vr, err := e.remote.Save(ctx, item)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, trackers.FieldState, err)
	}
	if vr != nil && !vr.Valid {
		log.Warn().
			Strs("fields", vr.InvalidFields()).
			Str("state", state).
			Str("reason", reason).
			Msg("state promotion rejected, item left in default state")
		result.warnf("project %d artifact %d: state promotion rejected for fields %v", p.LocalID, a.ID, vr.InvalidFields())
	}

	buffer.Add(scope, ledger.Entry{
		ProjectID:   p.LocalID,
		InternalID:  a.ID,
		ExternalKey: strconv.Itoa(item.ID),
		Primary:     true,
	})
	pr.CreatedRemote++

	log.Info().Int("remote_item", item.ID).Str("kind", a.Kind.String()).Msg("created remote item")
	return nil
}

// applyLocalToRemote writes the local artifact's state wholesale onto the
// remote item. Every field is recorded through the diff builder against its
// current value; a clean diff means no write at all.
func (e *Engine) applyLocalToRemote(ctx context.Context, p ProjectMapping, pair *reconcile.Pair, resolver *resolve.Resolver, pr *ProjectResult) error {
	log := logging.Ctx(ctx)
	a, item := pair.Local, pair.Remote

	pair.Changes.Set(trackers.FieldTitle, item.FieldString(trackers.FieldTitle), a.Name)
	pair.Changes.Set(trackers.FieldDescription, item.FieldString(trackers.FieldDescription), htmltext.Normalize(a.Description))

	state, reason, err := e.translator.StatusToRemote(p.LocalID, a.StatusID)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, trackers.FieldState, err)
	}
	pair.Changes.Set(trackers.FieldState, item.FieldString(trackers.FieldState), state)
	pair.Changes.Set(trackers.FieldReason, item.FieldString(trackers.FieldReason), reason)

	if key, err := e.translator.ToRemote(ledger.ScopePriority, p.LocalID, a.PriorityID); err == nil {
		// The remote may hold the priority as a number; diff against its
		// key form so an unchanged value does not read as dirty.
		pair.Changes.Set(e.opts.PriorityField, e.remotePriorityKey(item), key)
	} else if a.PriorityID != 0 {
		log.Warn().Err(err).Int("priority_id", a.PriorityID).Msg("priority not mapped, left unchanged")
	}

	if a.OwnerID != 0 {
		if login, ok := e.remoteOwner(ctx, a.OwnerID, nil); ok {
			pair.Changes.Set(trackers.FieldAssignedTo, item.FieldString(trackers.FieldAssignedTo), login)
		}
	}

	e.applyCustomProperties(ctx, p, a, item, pair.Changes, nil, nil)

	newIterationID := item.IterationID
	if releaseID, ok := a.ReleaseRef(); ok {
		entry, err := e.ensureRemoteRelease(ctx, p, releaseID, resolver)
		if err != nil {
			return errors.WrapArtifact(p.LocalID, a.ID, "release", err)
		}
		if id, err := strconv.Atoi(entry.ExternalKey); err == nil {
			newIterationID = id
		}
	}

	if !pair.Dirty() && newIterationID == item.IterationID {
		pr.Skipped++
		return nil
	}

	pair.Changes.Apply(item.SetField)
	item.IterationID = newIterationID

	vr, err := e.remote.Validate(ctx, item)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, "", err)
	}
	if vr != nil && !vr.Valid {
		// Skip the write entirely; the full offending field list makes the
		// failure diagnosable from the log alone.
		log.Error().
			Strs("fields", vr.InvalidFields()).
			Str("changes", pair.Changes.String()).
			Msg("remote validation rejected update, write skipped")
		return errors.NewArtifactError(p.LocalID, a.ID, "",
			"remote validation rejected fields "+joinFields(vr.InvalidFields()), errors.ErrInvalidInput)
	}

	vr, err = e.remote.Save(ctx, item)
	if err != nil {
		return errors.WrapArtifact(p.LocalID, a.ID, "", err)
	}
	if vr != nil && !vr.Valid {
		return errors.NewArtifactError(p.LocalID, a.ID, "",
			"remote save rejected fields "+joinFields(vr.InvalidFields()), errors.ErrInvalidInput)
	}

	pr.UpdatedRemote++
	log.Info().Str("changes", pair.Changes.String()).Msg("updated remote item")
	return nil
}

// applyCustomProperties records the mapped custom property slots. During a
// create it fills the field map directly; during an update it diffs each
// slot against the item's current value through the diff builder. Unmapped
// list values degrade per field.
func (e *Engine) applyCustomProperties(ctx context.Context, p ProjectMapping, a *trackers.Artifact, item *trackers.Item, changes *reconcile.Changes, fields map[string]any, result *Result) {
	log := logging.Ctx(ctx)

	setDiffed := func(field string, desired any) {
		if changes != nil {
			changes.Set(field, item.Field(field), desired)
			return
		}
		fields[field] = desired
	}

	for _, slot := range e.opts.Properties.Slots() {
		field, _ := e.opts.Properties.RemoteField(slot)

		var desired any
		switch {
		case translate.IsTextSlot(slot):
			desired = a.TextProp(slot)
		case translate.IsListSlot(slot):
			valueID, set := a.ListProp(slot)
			if !set {
				continue
			}
			key, err := e.translator.ListValueToRemote(p.LocalID, translate.SlotNumber(slot), valueID)
			if err != nil {
				log.Warn().Err(err).Str("slot", string(slot)).Int("value_id", valueID).Msg("list value not mapped, slot skipped")
				if result != nil {
					result.warnf("project %d artifact %d: %s", p.LocalID, a.ID, err)
				}
				continue
			}
			desired = key
		default:
			continue
		}

		// Special structural targets (rank, triage, area, discipline) share
		// the generic write path here; the remote adapter routes them to
		// their structural storage by reference name.
		if kind, ok := e.opts.Special.Kind(field); ok {
			log.Debug().Str("slot", string(slot)).Str("field", field).Str("special", kind.String()).Msg("writing special structural field")
		}
		setDiffed(field, desired)
	}
}

// ensureRemoteRelease resolves a local release reference to a remote
// iteration node, creating the node and polling for its visibility when it
// does not exist yet.
func (e *Engine) ensureRemoteRelease(ctx context.Context, p ProjectMapping, releaseID int, resolver *resolve.Resolver) (ledger.Entry, error) {
	var nodeID int
	return resolver.Ensure(ctx, ledger.ScopeRelease, p.LocalID, releaseID,
		func(ctx context.Context) (string, error) {
			name, err := e.local.ReleaseName(ctx, p.LocalID, releaseID)
			if err != nil {
				return "", err
			}
			nodeID, err = e.remote.CreateNode(ctx, p.Remote, name)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(nodeID), nil
		},
		func(ctx context.Context) (bool, error) {
			node, err := e.remote.NodeByID(ctx, p.Remote, nodeID)
			if err != nil {
				return false, err
			}
			return node != nil, nil
		},
	)
}

// remoteOwner resolves a local owner id to the remote login, auto-mapping
// by identical login when enabled. A miss degrades to unassigned.
func (e *Engine) remoteOwner(ctx context.Context, ownerID int, result *Result) (string, bool) {
	log := logging.Ctx(ctx)

	if login, err := e.translator.UserToRemote(ownerID); err == nil {
		return login, true
	}

	if e.opts.AutoMapUsers {
		login, err := e.local.UserLogin(ctx, ownerID)
		if err == nil && login != "" {
			entry := ledger.Entry{InternalID: ownerID, ExternalKey: login, Primary: true}
			if err := e.ledger.RecordNew(ctx, ledger.ScopeUser, []ledger.Entry{entry}); err != nil {
				log.Warn().Err(err).Int("owner_id", ownerID).Msg("recording auto user mapping")
			} else {
				log.Info().Int("owner_id", ownerID).Str("login", login).Msg("auto-mapped user by login")
				return login, true
			}
		}
	}

	log.Warn().Int("owner_id", ownerID).Msg("owner not mapped, item left unassigned")
	if result != nil {
		result.warnf("owner %d not mapped, item left unassigned", ownerID)
	}
	return "", false
}

func joinFields(fields []string) string {
	return "[" + strings.Join(fields, ", ") + "]"
}
