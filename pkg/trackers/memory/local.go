// Package memory provides in-memory implementations of the tracker adapter
// contracts. They back the package tests and the CLI's offline fixture
// mode; production deployments supply transport-backed adapters instead.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/ledger"
	"github.com/agentstation/syncbridge/pkg/trackers"
)

// Local is an in-memory LocalTracker.
type Local struct {
	mu sync.RWMutex

	projects  []int
	artifacts map[int]trackers.Artifact // keyed by artifact id
	releases  map[int]string            // release id -> name
	users     map[int]string            // user id -> login
	mappings  map[ledger.Scope][]ledger.Entry

	nextID        int
	nextReleaseID int

	// AuthErr, when set, is returned from Authenticate.
	AuthErr error

	// Updates counts Update calls, for no-op idempotence assertions.
	Updates int
}

// NewLocal creates an empty in-memory local tracker.
func NewLocal(projects ...int) *Local {
	return &Local{
		projects:      projects,
		artifacts:     make(map[int]trackers.Artifact),
		releases:      make(map[int]string),
		users:         make(map[int]string),
		mappings:      make(map[ledger.Scope][]ledger.Entry),
		nextID:        1000,
		nextReleaseID: 100,
	}
}

// Authenticate implements trackers.LocalTracker.
func (l *Local) Authenticate(_ context.Context) error {
	return l.AuthErr
}

// Projects implements trackers.LocalTracker.
func (l *Local) Projects(_ context.Context) ([]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]int, len(l.projects))
	copy(out, l.projects)
	return out, nil
}

// Seed inserts an artifact as-is, keeping its id. Test setup helper.
func (l *Local) Seed(artifact trackers.Artifact) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.artifacts[artifact.ID] = artifact
	if artifact.ID >= l.nextID {
		l.nextID = artifact.ID + 1
	}
}

// SeedRelease inserts a release container. Test setup helper.
func (l *Local) SeedRelease(id int, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases[id] = name
	if id >= l.nextReleaseID {
		l.nextReleaseID = id + 1
	}
}

// SeedUser inserts a local user. Test setup helper.
func (l *Local) SeedUser(id int, login string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[id] = login
}

// ReleaseName implements trackers.LocalTracker.
func (l *Local) ReleaseName(_ context.Context, _, releaseID int) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	name, ok := l.releases[releaseID]
	if !ok {
		return "", errors.NewNotFoundError("release", strconv.Itoa(releaseID))
	}
	return name, nil
}

// UserLogin implements trackers.LocalTracker.
func (l *Local) UserLogin(_ context.Context, userID int) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	login, ok := l.users[userID]
	if !ok {
		return "", errors.NewNotFoundError("user", strconv.Itoa(userID))
	}
	return login, nil
}

// UserByLogin implements trackers.LocalTracker.
func (l *Local) UserByLogin(_ context.Context, login string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id, candidate := range l.users {
		if candidate == login {
			return id, nil
		}
	}
	return 0, nil
}

// ListNewSince implements trackers.LocalTracker.
func (l *Local) ListNewSince(_ context.Context, projectID int, kind trackers.Kind, since time.Time) ([]trackers.Artifact, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []trackers.Artifact
	for _, a := range l.artifacts {
		if a.ProjectID == projectID && a.Kind == kind && a.CreatedAt.After(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetByID implements trackers.LocalTracker.
func (l *Local) GetByID(_ context.Context, projectID, id int, kind trackers.Kind) (*trackers.Artifact, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.artifacts[id]
	if !ok || a.ProjectID != projectID || a.Kind != kind {
		return nil, nil
	}
	out := a
	return &out, nil
}

// Create implements trackers.LocalTracker.
func (l *Local) Create(_ context.Context, artifact trackers.Artifact) (*trackers.Artifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	artifact.ID = l.nextID
	l.nextID++
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}
	if artifact.UpdatedAt.IsZero() {
		artifact.UpdatedAt = artifact.CreatedAt
	}
	l.artifacts[artifact.ID] = artifact
	out := artifact
	return &out, nil
}

// Update implements trackers.LocalTracker.
func (l *Local) Update(_ context.Context, artifact trackers.Artifact) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.artifacts[artifact.ID]; !ok {
		return errors.NewNotFoundError("artifact", strconv.Itoa(artifact.ID))
	}
	l.artifacts[artifact.ID] = artifact
	l.Updates++
	return nil
}

// CreateRelease implements trackers.LocalTracker.
func (l *Local) CreateRelease(_ context.Context, _ int, name string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextReleaseID
	l.nextReleaseID++
	l.releases[id] = name
	return id, nil
}

// ListMappings implements trackers.LocalTracker.
func (l *Local) ListMappings(_ context.Context, scope ledger.Scope) ([]ledger.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ledger.Entry, len(l.mappings[scope]))
	copy(out, l.mappings[scope])
	return out, nil
}

// AddMappings implements trackers.LocalTracker.
func (l *Local) AddMappings(_ context.Context, scope ledger.Scope, entries []ledger.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.mappings[scope] = append(l.mappings[scope], entries...)
	return nil
}

// SeedMapping inserts a correlation entry. Test setup helper.
func (l *Local) SeedMapping(scope ledger.Scope, entry ledger.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mappings[scope] = append(l.mappings[scope], entry)
}
