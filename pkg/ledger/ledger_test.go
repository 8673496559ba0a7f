package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/syncbridge/pkg/ledger"
)

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	tables map[ledger.Scope][]ledger.Entry
	adds   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[ledger.Scope][]ledger.Entry)}
}

func (s *fakeStore) List(_ context.Context, scope ledger.Scope) ([]ledger.Entry, error) {
	out := make([]ledger.Entry, len(s.tables[scope]))
	copy(out, s.tables[scope])
	return out, nil
}

func (s *fakeStore) Add(_ context.Context, scope ledger.Scope, entries []ledger.Entry) error {
	s.adds++
	s.tables[scope] = append(s.tables[scope], entries...)
	return nil
}

func TestFindByInternalIDPrefersPrimary(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.tables[ledger.ScopeStatus] = []ledger.Entry{
		{ProjectID: 1, InternalID: 3, ExternalKey: "Active+Investigate", Primary: false},
		{ProjectID: 1, InternalID: 3, ExternalKey: "Active", Primary: true},
		{ProjectID: 2, InternalID: 3, ExternalKey: "Open", Primary: true},
	}

	l := ledger.New(store)
	require.NoError(t, l.Load(ctx, ledger.ScopeStatus))

	e, ok := l.FindByInternalID(ledger.ScopeStatus, 1, 3)
	require.True(t, ok)
	assert.Equal(t, "Active", e.ExternalKey)
	assert.True(t, e.Primary)
}

func TestFindByExternalKeyPrimaryOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.tables[ledger.ScopeStatus] = []ledger.Entry{
		{ProjectID: 1, InternalID: 3, ExternalKey: "Resolved+Fixed", Primary: false},
		{ProjectID: 1, InternalID: 3, ExternalKey: "Resolved", Primary: true},
	}

	l := ledger.New(store)
	require.NoError(t, l.Load(ctx, ledger.ScopeStatus))

	// Secondary satisfies a plain lookup.
	e, ok := l.FindByExternalKey(ledger.ScopeStatus, 1, "Resolved+Fixed", false)
	require.True(t, ok)
	assert.Equal(t, 3, e.InternalID)

	// But not a canonical one.
	_, ok = l.FindByExternalKey(ledger.ScopeStatus, 1, "Resolved+Fixed", true)
	assert.False(t, ok)

	e, ok = l.FindByExternalKey(ledger.ScopeStatus, 1, "Resolved", true)
	require.True(t, ok)
	assert.True(t, e.Primary)
}

func TestUserScopeIgnoresProject(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.tables[ledger.ScopeUser] = []ledger.Entry{
		{InternalID: 7, ExternalKey: "ada.lovelace", Primary: true},
	}

	l := ledger.New(store)
	require.NoError(t, l.Load(ctx, ledger.ScopeUser))

	e, ok := l.FindGlobalByInternalID(ledger.ScopeUser, 7)
	require.True(t, ok)
	assert.Equal(t, "ada.lovelace", e.ExternalKey)

	// A project-qualified lookup finds it too; users have no partition.
	_, ok = l.FindByInternalID(ledger.ScopeUser, 99, 7)
	assert.True(t, ok)
}

func TestRecordNewVisibleWithoutRefresh(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := ledger.New(store)
	require.NoError(t, l.Load(ctx, ledger.ScopeRelease))

	entry := ledger.Entry{ProjectID: 1, InternalID: 10, ExternalKey: "Sprint 4", Primary: true}
	require.NoError(t, l.RecordNew(ctx, ledger.ScopeRelease, []ledger.Entry{entry}))

	_, ok := l.FindByInternalID(ledger.ScopeRelease, 1, 10)
	assert.True(t, ok)
	assert.Equal(t, 1, store.adds)

	// Refresh re-reads the authoritative store and still sees it.
	require.NoError(t, l.Refresh(ctx, ledger.ScopeRelease))
	_, ok = l.FindByInternalID(ledger.ScopeRelease, 1, 10)
	assert.True(t, ok)
}

func TestBufferPreventsSecondLookupMiss(t *testing.T) {
	buf := ledger.NewBuffer()
	entry := ledger.Entry{ProjectID: 1, InternalID: 10, ExternalKey: "Sprint 4", Primary: true}
	buf.Add(ledger.ScopeRelease, entry)

	got, ok := buf.FindByInternalID(ledger.ScopeRelease, 1, 10)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	_, ok = buf.FindByExternalKey(ledger.ScopeRelease, 1, "Sprint 4")
	assert.True(t, ok)

	_, ok = buf.FindByInternalID(ledger.ScopeRelease, 2, 10)
	assert.False(t, ok)
}

func TestBufferDrain(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := ledger.New(store)

	buf := ledger.NewBuffer()
	buf.Add(ledger.ScopeRelease, ledger.Entry{ProjectID: 1, InternalID: 10, ExternalKey: "Sprint 4", Primary: true})
	require.NoError(t, buf.Drain(ctx, l))

	assert.Equal(t, 0, buf.Len())
	_, ok := l.FindByInternalID(ledger.ScopeRelease, 1, 10)
	assert.True(t, ok)
}

func TestCustomListScope(t *testing.T) {
	scope := ledger.CustomList(3)
	assert.Equal(t, ledger.Scope("custom_list_03"), scope)
	assert.True(t, scope.IsCustomList())
	assert.True(t, scope.IsValid())
	assert.True(t, scope.ProjectScoped())
	assert.False(t, ledger.ScopeUser.ProjectScoped())
}
