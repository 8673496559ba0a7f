package main

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/syncbridge/pkg/engine"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/trackers"
	"github.com/agentstation/syncbridge/pkg/trackers/memory"
	"github.com/agentstation/syncbridge/pkg/translate"
)

// fixture is the YAML description of a complete offline environment: both
// trackers' contents, the seed mapping tables, and the project pairs.
type fixture struct {
	Settings fixtureSettings   `yaml:"settings"`
	Props    map[string]string `yaml:"properties"`

	Projects []engine.ProjectMapping `yaml:"projects"`
	Releases []fixtureRelease        `yaml:"releases"`
	Users    []fixtureUser           `yaml:"users"`
	Mappings []fixtureMapping        `yaml:"mappings"`

	Artifacts []fixtureArtifact `yaml:"artifacts"`
	Items     []fixtureItem     `yaml:"items"`
}

type fixtureSettings struct {
	IncidentType string `yaml:"incident_type"`
	TaskType     string `yaml:"task_type"`
}

type fixtureRelease struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type fixtureUser struct {
	ID    int    `yaml:"id"`
	Login string `yaml:"login"`
}

type fixtureMapping struct {
	Scope       string `yaml:"scope"`
	ProjectID   int    `yaml:"project_id"`
	InternalID  int    `yaml:"internal_id"`
	ExternalKey string `yaml:"external_key"`
	Primary     bool   `yaml:"primary"`
}

type fixtureArtifact struct {
	ID          int            `yaml:"id"`
	ProjectID   int            `yaml:"project_id"`
	Kind        string         `yaml:"kind"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	StatusID    int            `yaml:"status_id"`
	PriorityID  int            `yaml:"priority_id"`
	OwnerID     int            `yaml:"owner_id"`
	ReleaseID   int            `yaml:"release_id"`
	CreatedAt   time.Time      `yaml:"created_at"`
	UpdatedAt   time.Time      `yaml:"updated_at"`
	Text        map[string]string `yaml:"text"`
	List        map[string]int    `yaml:"list"`
}

type fixtureItem struct {
	ID          int            `yaml:"id"`
	Project     string         `yaml:"project"`
	Type        string         `yaml:"type"`
	ChangedAt   time.Time      `yaml:"changed_at"`
	Fields      map[string]any `yaml:"fields"`
	IterationID int            `yaml:"iteration_id"`
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// propertyMap builds the custom property slot mapping, or nil when the
// fixture defines none.
func (f *fixture) propertyMap() *translate.PropertyMap {
	if len(f.Props) == 0 {
		return nil
	}
	fields := make(map[trackers.Slot]string, len(f.Props))
	for slot, field := range f.Props {
		fields[trackers.Slot(slot)] = field
	}
	return translate.NewPropertyMap(fields)
}

// build seeds the in-memory trackers from the fixture.
func (f *fixture) build() (*memory.Local, *memory.Remote, []engine.ProjectMapping) {
	localProjects := make([]int, 0, len(f.Projects))
	remoteProjects := make([]string, 0, len(f.Projects))
	for _, p := range f.Projects {
		localProjects = append(localProjects, p.LocalID)
		remoteProjects = append(remoteProjects, p.Remote)
	}

	local := memory.NewLocal(localProjects...)
	remote := memory.NewRemote(remoteProjects...)

	for _, r := range f.Releases {
		local.SeedRelease(r.ID, r.Name)
	}
	for _, u := range f.Users {
		local.SeedUser(u.ID, u.Login)
	}
	for _, m := range f.Mappings {
		local.SeedMapping(ledger.Scope(m.Scope), ledger.Entry{
			ProjectID:   m.ProjectID,
			InternalID:  m.InternalID,
			ExternalKey: m.ExternalKey,
			Primary:     m.Primary,
		})
	}

	for _, a := range f.Artifacts {
		artifact := trackers.Artifact{
			ID:                a.ID,
			ProjectID:         a.ProjectID,
			Kind:              trackers.Kind(a.Kind),
			Name:              a.Name,
			Description:       a.Description,
			StatusID:          a.StatusID,
			PriorityID:        a.PriorityID,
			OwnerID:           a.OwnerID,
			ResolvedReleaseID: a.ReleaseID,
			CreatedAt:         a.CreatedAt,
			UpdatedAt:         a.UpdatedAt,
		}
		for slot, value := range a.Text {
			artifact.SetTextProp(trackers.Slot(slot), value)
		}
		for slot, value := range a.List {
			artifact.SetListProp(trackers.Slot(slot), value)
		}
		local.Seed(artifact)
	}

	for _, it := range f.Items {
		remote.Seed(trackers.Item{
			ID:          it.ID,
			Project:     it.Project,
			Type:        it.Type,
			ChangedAt:   it.ChangedAt,
			Fields:      it.Fields,
			IterationID: it.IterationID,
		})
	}

	return local, remote, f.Projects
}
