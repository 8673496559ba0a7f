// Package ledger implements the correlation ledger linking artifacts and
// enumerated field values across the two trackers. The working set lives in
// memory and is loaded from, and appended to, an authoritative Store; the
// orchestrator refreshes it at the two-phase checkpoint so that the pair
// pass never sees stale "not found" state for entities created earlier in
// the same run.
package ledger

import (
	"context"
	"sync"
)

// Store is the persistence contract for the authoritative mapping tables.
// In production it is backed by the local tracker's mapping storage; tests
// use an in-memory implementation.
type Store interface {
	// List returns all entries recorded for the scope.
	List(ctx context.Context, scope Scope) ([]Entry, error)

	// Add appends entries to the scope. It does not deduplicate; callers
	// must have checked for existence first.
	Add(ctx context.Context, scope Scope, entries []Entry) error
}

// Ledger is the in-memory working set over a Store.
type Ledger struct {
	mu      sync.RWMutex
	store   Store
	entries map[Scope][]Entry
}

// New creates a Ledger over the given store. Call Load before lookups.
func New(store Store) *Ledger {
	return &Ledger{
		store:   store,
		entries: make(map[Scope][]Entry),
	}
}

// Load reads the given scopes from the store into the working set,
// replacing whatever was previously loaded for them.
func (l *Ledger) Load(ctx context.Context, scopes ...Scope) error {
	for _, scope := range scopes {
		entries, err := l.store.List(ctx, scope)
		if err != nil {
			return err
		}
		l.mu.Lock()
		l.entries[scope] = entries
		l.mu.Unlock()
	}
	return nil
}

// Refresh re-reads the given scopes from the authoritative store. It is
// the correctness-critical checkpoint between the creation phase and the
// pair-reconciliation phase.
func (l *Ledger) Refresh(ctx context.Context, scopes ...Scope) error {
	return l.Load(ctx, scopes...)
}

// FindByInternalID returns the entry for an internal id within a project,
// preferring the primary entry when secondaries share the id.
// A miss is not an error; it signals the caller to skip, log, or fall into
// dependent-entity resolution.
func (l *Ledger) FindByInternalID(scope Scope, projectID, internalID int) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var fallback Entry
	var haveFallback bool
	for _, e := range l.entries[scope] {
		if e.InternalID != internalID || !e.matchesProject(scope, projectID) {
			continue
		}
		if e.Primary {
			return e, true
		}
		if !haveFallback {
			fallback, haveFallback = e, true
		}
	}
	return fallback, haveFallback
}

// FindByExternalKey returns the first entry for an external key within a
// project. With primaryOnly set, only the canonical entry satisfies the
// lookup; this disambiguates when several composite external keys fold
// onto one internal value.
func (l *Ledger) FindByExternalKey(scope Scope, projectID int, externalKey string, primaryOnly bool) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries[scope] {
		if e.ExternalKey != externalKey || !e.matchesProject(scope, projectID) {
			continue
		}
		if primaryOnly && !e.Primary {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

// FindGlobalByInternalID is the project-agnostic variant of
// FindByInternalID, for scopes without a per-project partition.
func (l *Ledger) FindGlobalByInternalID(scope Scope, internalID int) (Entry, bool) {
	return l.FindByInternalID(scope, 0, internalID)
}

// FindGlobalByExternalKey is the project-agnostic variant of
// FindByExternalKey.
func (l *Ledger) FindGlobalByExternalKey(scope Scope, externalKey string, primaryOnly bool) (Entry, bool) {
	return l.FindByExternalKey(scope, 0, externalKey, primaryOnly)
}

// Entries returns a copy of the working set for a scope.
func (l *Ledger) Entries(scope Scope) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries[scope]))
	copy(out, l.entries[scope])
	return out
}

// RecordNew appends entries to the authoritative store and to the working
// set. It does not deduplicate; callers check both the ledger and the
// run-local buffer before creating correlations.
func (l *Ledger) RecordNew(ctx context.Context, scope Scope, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := l.store.Add(ctx, scope, entries); err != nil {
		return err
	}
	l.mu.Lock()
	l.entries[scope] = append(l.entries[scope], entries...)
	l.mu.Unlock()
	return nil
}
