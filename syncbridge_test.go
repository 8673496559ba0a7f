package syncbridge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/syncbridge"
	"github.com/agentstation/syncbridge/pkg/engine"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/trackers"
	"github.com/agentstation/syncbridge/pkg/trackers/memory"
)

func newBridge(t *testing.T, local *memory.Local, remote *memory.Remote, opts ...syncbridge.Option) syncbridge.Syncbridge {
	t.Helper()

	options := append([]syncbridge.Option{
		syncbridge.WithTrackers(local, remote),
		syncbridge.WithEngineOptions(
			engine.WithProjects(engine.ProjectMapping{LocalID: 1, Remote: "REMOTE"}),
			engine.WithPoll(time.Millisecond, 100*time.Millisecond),
		),
	}, opts...)

	s, err := syncbridge.New(options...)
	require.NoError(t, err)
	return s
}

func TestNewRequiresTrackers(t *testing.T) {
	_, err := syncbridge.New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trackers")
}

func TestSyncAdvancesWatermark(t *testing.T) {
	local := memory.NewLocal(1)
	remote := memory.NewRemote("REMOTE")
	local.SeedMapping(ledger.ScopeStatus, ledger.Entry{ProjectID: 1, InternalID: 1, ExternalKey: "Active+Approved", Primary: true})

	serverTime := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newBridge(t, local, remote,
		syncbridge.WithInitialLastSync(serverTime.Add(-time.Hour)),
		syncbridge.WithClock(func() time.Time { return serverTime }),
	)

	local.Seed(trackers.Artifact{
		ID:        1001,
		ProjectID: 1,
		Kind:      trackers.KindIncident,
		Name:      "First",
		StatusID:  1,
		CreatedAt: serverTime.Add(-30 * time.Minute),
		UpdatedAt: serverTime.Add(-30 * time.Minute),
	})

	result, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StatusSuccess, result.Status)
	assert.Equal(t, serverTime, s.LastSync())
}

func TestSyncKeepsWatermarkOnError(t *testing.T) {
	local := memory.NewLocal(1)
	remote := memory.NewRemote("REMOTE")
	local.AuthErr = assert.AnError

	initial := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	s := newBridge(t, local, remote, syncbridge.WithInitialLastSync(initial))

	_, err := s.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, initial, s.LastSync())
}

func TestOnRunCompletedFires(t *testing.T) {
	local := memory.NewLocal(1)
	remote := memory.NewRemote("REMOTE")
	s := newBridge(t, local, remote)

	var got *engine.Result
	s.OnRunCompleted(func(result *engine.Result) { got = result })

	result, err := s.Sync(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.RunID, got.RunID)
}

func TestScheduleRequiresPositiveInterval(t *testing.T) {
	local := memory.NewLocal(1)
	remote := memory.NewRemote("REMOTE")

	_, err := syncbridge.New(
		syncbridge.WithTrackers(local, remote),
		syncbridge.WithEngineOptions(engine.WithProjects(engine.ProjectMapping{LocalID: 1, Remote: "REMOTE"})),
		syncbridge.WithScheduleInterval(-time.Second),
	)
	require.Error(t, err)
}
