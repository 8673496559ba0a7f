package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/syncbridge/pkg/engine"
	"github.com/agentstation/syncbridge/pkg/trackers"
)

func TestLoadFixture(t *testing.T) {
	f, err := loadFixture("testdata/fixture.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Bug", f.Settings.IncidentType)
	require.Len(t, f.Projects, 1)
	assert.Equal(t, 1, f.Projects[0].LocalID)
	assert.Equal(t, "CONTOSO", f.Projects[0].Remote)
	assert.Len(t, f.Mappings, 4)
	assert.Len(t, f.Artifacts, 1)
	assert.Len(t, f.Items, 1)

	pm := f.propertyMap()
	require.NotNil(t, pm)
	field, ok := pm.RemoteField(trackers.TextSlot(1))
	require.True(t, ok)
	assert.Equal(t, "Custom.Notes", field)
}

func TestFixtureBuildsRunnableEnvironment(t *testing.T) {
	f, err := loadFixture("testdata/fixture.yaml")
	require.NoError(t, err)

	local, remote, projects := f.build()
	require.Len(t, projects, 1)

	e, err := engine.New(local, remote,
		engine.WithProjects(projects...),
		engine.WithProperties(f.propertyMap()),
		engine.WithPoll(time.Millisecond, 100*time.Millisecond),
	)
	require.NoError(t, err)

	lastSync := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	result, err := e.Run(context.Background(), lastSync, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, engine.StatusSuccess, result.Status)
	assert.Equal(t, 1, result.Projects[1].CreatedRemote)
	assert.Equal(t, 1, result.Projects[1].CreatedLocal)
}