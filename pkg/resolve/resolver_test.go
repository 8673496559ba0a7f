package resolve_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/resolve"
)

type mapStore map[ledger.Scope][]ledger.Entry

func (s mapStore) List(_ context.Context, scope ledger.Scope) ([]ledger.Entry, error) {
	return s[scope], nil
}

func (s mapStore) Add(_ context.Context, scope ledger.Scope, entries []ledger.Entry) error {
	s[scope] = append(s[scope], entries...)
	return nil
}

func newResolver(t *testing.T, store mapStore) (*resolve.Resolver, *ledger.Buffer) {
	t.Helper()
	l := ledger.New(store)
	require.NoError(t, l.Load(context.Background(), ledger.ScopeRelease))
	buf := ledger.NewBuffer()
	r := resolve.New(l, buf,
		resolve.WithPollInterval(time.Millisecond),
		resolve.WithPollBudget(50*time.Millisecond),
	)
	return r, buf
}

func TestLookupTiers(t *testing.T) {
	r, buf := newResolver(t, mapStore{
		ledger.ScopeRelease: {
			{ProjectID: 1, InternalID: 10, ExternalKey: "Sprint 4", Primary: true},
		},
	})

	res := r.Lookup(ledger.ScopeRelease, 1, 10)
	assert.Equal(t, resolve.Found, res.State)
	assert.Equal(t, "Sprint 4", res.Entry.ExternalKey)

	buf.Add(ledger.ScopeRelease, ledger.Entry{ProjectID: 1, InternalID: 11, ExternalKey: "Sprint 5", Primary: true})
	res = r.Lookup(ledger.ScopeRelease, 1, 11)
	assert.Equal(t, resolve.PendingThisRun, res.State)

	res = r.Lookup(ledger.ScopeRelease, 1, 12)
	assert.Equal(t, resolve.NotFound, res.State)
	assert.False(t, res.Exists())
}

func TestEnsureCreatesOnceForTwoArtifacts(t *testing.T) {
	r, _ := newResolver(t, mapStore{})
	ctx := context.Background()

	creates := 0
	create := func(context.Context) (string, error) {
		creates++
		return "Sprint 9", nil
	}

	first, err := r.Ensure(ctx, ledger.ScopeRelease, 1, 42, create, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 9", first.ExternalKey)

	// Second artifact referencing the same missing release within the
	// run reuses the buffered correlation.
	second, err := r.Ensure(ctx, ledger.ScopeRelease, 1, 42, create, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, creates)
}

func TestEnsurePollsUntilVisible(t *testing.T) {
	r, buf := newResolver(t, mapStore{})
	ctx := context.Background()

	polls := 0
	visible := func(context.Context) (bool, error) {
		polls++
		return polls >= 3, nil
	}

	entry, err := r.Ensure(ctx, ledger.ScopeRelease, 1, 42,
		func(context.Context) (string, error) { return "Sprint 9", nil },
		visible,
	)
	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, 1, buf.Len())
	assert.True(t, entry.Primary)
}

func TestEnsureTimesOut(t *testing.T) {
	r, buf := newResolver(t, mapStore{})
	ctx := context.Background()

	_, err := r.Ensure(ctx, ledger.ScopeRelease, 1, 42,
		func(context.Context) (string, error) { return "Sprint 9", nil },
		func(context.Context) (bool, error) { return false, nil },
	)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))

	// No correlation is recorded for an unobservable container.
	assert.Equal(t, 0, buf.Len())
}

func TestEnsureCancellation(t *testing.T) {
	l := ledger.New(mapStore{})
	require.NoError(t, l.Load(context.Background(), ledger.ScopeRelease))
	r := resolve.New(l, ledger.NewBuffer(),
		resolve.WithPollInterval(time.Hour), // force the poll to block on the timer
		resolve.WithPollBudget(24*time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Ensure(ctx, ledger.ScopeRelease, 1, 42,
		func(context.Context) (string, error) { return "Sprint 9", nil },
		func(context.Context) (bool, error) { return false, nil },
	)
	assert.True(t, errors.IsCanceled(err))
}

func TestEnsureLocalReverseDirection(t *testing.T) {
	r, buf := newResolver(t, mapStore{})
	ctx := context.Background()

	creates := 0
	create := func(context.Context) (int, error) {
		creates++
		return 77, nil
	}

	entry, err := r.EnsureLocal(ctx, ledger.ScopeRelease, 1, "305", create)
	require.NoError(t, err)
	assert.Equal(t, 77, entry.InternalID)
	assert.Equal(t, "305", entry.ExternalKey)

	// Reuse via the buffer, keyed by external key.
	again, err := r.EnsureLocal(ctx, ledger.ScopeRelease, 1, "305", create)
	require.NoError(t, err)
	assert.Equal(t, entry, again)
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, buf.Len())
}

func TestEnsureCreateFailure(t *testing.T) {
	r, _ := newResolver(t, mapStore{})

	_, err := r.Ensure(context.Background(), ledger.ScopeRelease, 1, 42,
		func(context.Context) (string, error) { return "", errors.New("remote rejected") },
		nil,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote rejected")
}
