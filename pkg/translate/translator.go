// Package translate resolves enumerated field values between the two
// trackers through the correlation ledger's per-project, per-field lookup
// tables. The forward direction maps a local value id to its remote
// representation; the reverse direction requires the primary entry so that
// several remote composite keys folding onto one canonical value stay
// unambiguous.
package translate

import (
	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
)

// Translator resolves field values against a loaded ledger.
type Translator struct {
	ledger *ledger.Ledger
}

// New creates a Translator over the ledger.
func New(l *ledger.Ledger) *Translator {
	return &Translator{ledger: l}
}

// ToRemote returns the remote representation of a local enumerated value.
// A miss is an unresolved-mapping error; the caller decides whether the
// field is required (fatal for the artifact) or optional (warning).
func (t *Translator) ToRemote(scope ledger.Scope, projectID, internalID int) (string, error) {
	entry, ok := t.ledger.FindByInternalID(scope, projectID, internalID)
	if !ok {
		return "", errors.NewMappingError(projectID, scope.String(), "", "no entry for internal value")
	}
	return entry.ExternalKey, nil
}

// ToLocal returns the local value id for a remote representation. Only the
// primary entry satisfies the lookup.
func (t *Translator) ToLocal(scope ledger.Scope, projectID int, externalKey string) (int, error) {
	entry, ok := t.ledger.FindByExternalKey(scope, projectID, externalKey, true)
	if !ok {
		return 0, errors.NewMappingError(projectID, scope.String(), externalKey, "no primary entry for external key")
	}
	return entry.InternalID, nil
}

// ToLocalAny is ToLocal without the primary requirement, for scopes where
// composites never occur.
func (t *Translator) ToLocalAny(scope ledger.Scope, projectID int, externalKey string) (int, error) {
	entry, ok := t.ledger.FindByExternalKey(scope, projectID, externalKey, false)
	if !ok {
		return 0, errors.NewMappingError(projectID, scope.String(), externalKey, "no entry for external key")
	}
	return entry.InternalID, nil
}

// UserToRemote resolves a user id through the project-agnostic user table.
func (t *Translator) UserToRemote(internalID int) (string, error) {
	entry, ok := t.ledger.FindGlobalByInternalID(ledger.ScopeUser, internalID)
	if !ok {
		return "", errors.NewMappingError(0, ledger.ScopeUser.String(), "", "no entry for user")
	}
	return entry.ExternalKey, nil
}

// UserToLocal resolves a remote user login to the local user id.
func (t *Translator) UserToLocal(externalKey string) (int, error) {
	entry, ok := t.ledger.FindGlobalByExternalKey(ledger.ScopeUser, externalKey, false)
	if !ok {
		return 0, errors.NewMappingError(0, ledger.ScopeUser.String(), externalKey, "no entry for user")
	}
	return entry.InternalID, nil
}

// StatusToRemote resolves a local status id and splits its composite
// remote representation into state and reason.
func (t *Translator) StatusToRemote(projectID, statusID int) (state, reason string, err error) {
	key, err := t.ToRemote(ledger.ScopeStatus, projectID, statusID)
	if err != nil {
		return "", "", err
	}
	return SplitComposite(key)
}

// StatusToLocal joins a remote state and reason into the composite key and
// resolves it to the local status id through the primary entry.
func (t *Translator) StatusToLocal(projectID int, state, reason string) (int, error) {
	id, err := t.ToLocal(ledger.ScopeStatus, projectID, JoinComposite(state, reason))
	if err == nil {
		return id, nil
	}
	// Secondary entries fold additional state+reason composites onto a
	// canonical status without being it.
	entry, ok := t.ledger.FindByExternalKey(ledger.ScopeStatus, projectID, JoinComposite(state, reason), false)
	if !ok {
		return 0, err
	}
	return entry.InternalID, nil
}

// ListValueToRemote resolves a custom list property value through its
// numbered slot table.
func (t *Translator) ListValueToRemote(projectID, slotNumber, valueID int) (string, error) {
	return t.ToRemote(ledger.CustomList(slotNumber), projectID, valueID)
}

// ListValueToLocal resolves a remote custom list value to the local value
// id through its numbered slot table.
func (t *Translator) ListValueToLocal(projectID, slotNumber int, externalKey string) (int, error) {
	return t.ToLocal(ledger.CustomList(slotNumber), projectID, externalKey)
}
