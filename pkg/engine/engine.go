// Package engine orchestrates a bidirectional reconciliation run between
// the local and remote trackers. A run works project by project in four
// phases: push artifacts new on the local side, pull items new on the
// remote side, flush the run-local correlation buffer and refresh the
// ledger, then reconcile every correlated pair with whole-artifact
// last-writer-wins resolution.
package engine

import (
	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/trackers"
	"github.com/agentstation/syncbridge/pkg/translate"
)

// Engine drives reconciliation runs against one local/remote tracker pair.
type Engine struct {
	local  trackers.LocalTracker
	remote trackers.RemoteTracker

	ledger     *ledger.Ledger
	translator *translate.Translator
	opts       *Options
}

// New creates an Engine. The correlation ledger is backed by the local
// tracker's mapping tables.
func New(local trackers.LocalTracker, remote trackers.RemoteTracker, opts ...Option) (*Engine, error) {
	if local == nil || remote == nil {
		return nil, errors.NewValidationError("trackers", nil, "both trackers are required")
	}

	options := Defaults()
	for _, opt := range opts {
		opt(options)
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}

	l := ledger.New(&trackers.MappingStore{Local: local})
	return &Engine{
		local:      local,
		remote:     remote,
		ledger:     l,
		translator: translate.New(l),
		opts:       options,
	}, nil
}

// Ledger exposes the engine's correlation ledger, mainly for inspection in
// tooling and tests.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// kinds returns the artifact kinds this run covers.
func (e *Engine) kinds() []trackers.Kind {
	if e.opts.OnlyKind != "" {
		return []trackers.Kind{e.opts.OnlyKind}
	}
	return trackers.Kinds()
}

// scopes returns every ledger scope the run touches: the fixed tables plus
// a numbered table per mapped list slot.
func (e *Engine) scopes() []ledger.Scope {
	out := []ledger.Scope{
		ledger.ScopeIncident,
		ledger.ScopeTask,
		ledger.ScopeRelease,
		ledger.ScopeUser,
		ledger.ScopeStatus,
		ledger.ScopePriority,
		ledger.ScopeType,
	}
	for _, slot := range e.opts.Properties.Slots() {
		if translate.IsListSlot(slot) {
			if n := translate.SlotNumber(slot); n > 0 {
				out = append(out, ledger.CustomList(n))
			}
		}
	}
	return out
}

// itemType returns the remote item type for a local artifact kind.
func (e *Engine) itemType(kind trackers.Kind) string {
	if kind == trackers.KindTask {
		return e.opts.TaskType
	}
	return e.opts.IncidentType
}

// kindForType returns the local artifact kind for a remote item type, or
// false when the type is not synchronized.
func (e *Engine) kindForType(itemType string) (trackers.Kind, bool) {
	switch itemType {
	case e.opts.IncidentType:
		return trackers.KindIncident, true
	case e.opts.TaskType:
		return trackers.KindTask, true
	default:
		return "", false
	}
}

// kindForItem returns the local artifact kind for a remote item. The two
// configured defaults route directly; any other type is synchronized only
// when the type mapping table knows it, and routes as an incident, the
// kind the type table subdivides.
func (e *Engine) kindForItem(p ProjectMapping, item *trackers.Item) (trackers.Kind, bool) {
	if kind, ok := e.kindForType(item.Type); ok {
		return kind, true
	}
	if _, err := e.translator.ToLocalAny(ledger.ScopeType, p.LocalID, item.Type); err == nil {
		return trackers.KindIncident, true
	}
	return "", false
}

// remoteItemType returns the remote item type to create for an artifact:
// the mapped type when the artifact carries one, otherwise the per-kind
// default.
func (e *Engine) remoteItemType(p ProjectMapping, a *trackers.Artifact) (string, error) {
	if a.TypeID == 0 {
		return e.itemType(a.Kind), nil
	}
	mapped, err := e.translator.ToRemote(ledger.ScopeType, p.LocalID, a.TypeID)
	if err != nil {
		return e.itemType(a.Kind), err
	}
	return mapped, nil
}

// artifactScope returns the correlation scope for an artifact kind.
func artifactScope(kind trackers.Kind) ledger.Scope {
	if kind == trackers.KindTask {
		return ledger.ScopeTask
	}
	return ledger.ScopeIncident
}
