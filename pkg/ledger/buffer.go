package ledger

import "context"

// Buffer holds correlations created during the current run that are not yet
// visible through a refreshed ledger. Consulting it before any create is
// what prevents the same missing entity from being created twice within one
// run. The engine is single-threaded per invocation, so the buffer needs no
// locking.
type Buffer struct {
	entries map[Scope][]Entry
}

// NewBuffer creates an empty run-local buffer.
func NewBuffer() *Buffer {
	return &Buffer{entries: make(map[Scope][]Entry)}
}

// Add records a newly created correlation for this run.
func (b *Buffer) Add(scope Scope, entry Entry) {
	b.entries[scope] = append(b.entries[scope], entry)
}

// FindByInternalID returns the run-local entry for an internal id.
func (b *Buffer) FindByInternalID(scope Scope, projectID, internalID int) (Entry, bool) {
	for _, e := range b.entries[scope] {
		if e.InternalID == internalID && e.matchesProject(scope, projectID) {
			return e, true
		}
	}
	return Entry{}, false
}

// FindByExternalKey returns the run-local entry for an external key.
func (b *Buffer) FindByExternalKey(scope Scope, projectID int, externalKey string) (Entry, bool) {
	for _, e := range b.entries[scope] {
		if e.ExternalKey == externalKey && e.matchesProject(scope, projectID) {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns the buffered entries for a scope.
func (b *Buffer) Entries(scope Scope) []Entry {
	return b.entries[scope]
}

// Len returns the total number of buffered entries across scopes.
func (b *Buffer) Len() int {
	n := 0
	for _, entries := range b.entries {
		n += len(entries)
	}
	return n
}

// Drain writes all buffered entries through to the ledger and clears the
// buffer. Called at the end of a phase, before the ledger refresh.
func (b *Buffer) Drain(ctx context.Context, l *Ledger) error {
	for scope, entries := range b.entries {
		if err := l.RecordNew(ctx, scope, entries); err != nil {
			return err
		}
	}
	b.Reset()
	return nil
}

// Reset clears the buffer without persisting.
func (b *Buffer) Reset() {
	b.entries = make(map[Scope][]Entry)
}
