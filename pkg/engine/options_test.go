package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/syncbridge/pkg/trackers"
)

func TestDefaults(t *testing.T) {
	o := Defaults()
	assert.Equal(t, 5*time.Minute, o.GuardWindow)
	assert.Equal(t, "Bug", o.IncidentType)
	assert.Equal(t, "Task", o.TaskType)
	assert.Equal(t, trackers.FieldPriority, o.PriorityField)
	assert.Equal(t, trackers.DefaultRankField, o.Special.Rank)
	assert.Equal(t, 500*time.Millisecond, o.PollInterval)
	assert.Equal(t, 30*time.Second, o.PollBudget)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(o *Options) {},
		},
		{
			name:    "no projects",
			mutate:  func(o *Options) { o.Projects = nil },
			wantErr: true,
		},
		{
			name:    "unknown kind",
			mutate:  func(o *Options) { o.OnlyKind = "releases" },
			wantErr: true,
		},
		{
			name:    "negative guard window",
			mutate:  func(o *Options) { o.GuardWindow = -time.Second },
			wantErr: true,
		},
		{
			name:    "zero poll budget",
			mutate:  func(o *Options) { o.PollBudget = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Defaults()
			o.Projects = []ProjectMapping{{LocalID: 1, Remote: "R"}}
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithSpecialFieldsOverrides(t *testing.T) {
	o := Defaults()
	WithSpecialFields("Custom.Rank", "", "Custom.Area", "", "Custom.Prio")(o)

	assert.Equal(t, "Custom.Rank", o.Special.Rank)
	assert.Equal(t, trackers.DefaultTriageField, o.Special.Triage)
	assert.Equal(t, "Custom.Area", o.Special.Area)
	assert.Equal(t, trackers.DefaultDisciplineField, o.Special.Discipline)
	assert.Equal(t, "Custom.Prio", o.PriorityField)
}

func TestKindRouting(t *testing.T) {
	o := Defaults()
	o.Projects = []ProjectMapping{{LocalID: 1, Remote: "R"}}
	e := &Engine{opts: o}

	assert.Equal(t, "Bug", e.itemType(trackers.KindIncident))
	assert.Equal(t, "Task", e.itemType(trackers.KindTask))

	kind, ok := e.kindForType("Bug")
	assert.True(t, ok)
	assert.Equal(t, trackers.KindIncident, kind)
	_, ok = e.kindForType("Epic")
	assert.False(t, ok)
}
