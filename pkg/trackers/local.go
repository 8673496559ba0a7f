package trackers

import (
	"context"
	"time"

	"github.com/agentstation/syncbridge/pkg/ledger"
)

// LocalTracker is the adapter contract for the local record system.
//
// A lookup miss is reported as a nil result, not an error; errors are
// reserved for transport and authentication failures. The mapping methods
// back the correlation ledger's authoritative store.
type LocalTracker interface {
	// Authenticate establishes the session. Failure is fatal for the
	// whole run.
	Authenticate(ctx context.Context) error

	// Projects returns the ids of the projects enabled for sync.
	Projects(ctx context.Context) ([]int, error)

	// ListNewSince returns artifacts of the kind created after the given
	// timestamp in the project.
	ListNewSince(ctx context.Context, projectID int, kind Kind, since time.Time) ([]Artifact, error)

	// GetByID returns one artifact, or nil when it does not exist.
	GetByID(ctx context.Context, projectID, id int, kind Kind) (*Artifact, error)

	// Create writes a new artifact and returns it with its assigned id.
	Create(ctx context.Context, artifact Artifact) (*Artifact, error)

	// Update writes changed fields of an existing artifact.
	Update(ctx context.Context, artifact Artifact) error

	// CreateRelease writes a new release container and returns its id.
	CreateRelease(ctx context.Context, projectID int, name string) (int, error)

	// ReleaseName returns the display name of a release container.
	ReleaseName(ctx context.Context, projectID, releaseID int) (string, error)

	// UserLogin returns the login of a local user, for automatic user
	// mapping by identical login.
	UserLogin(ctx context.Context, userID int) (string, error)

	// UserByLogin returns the local user id for a login, or 0 when no
	// user carries it.
	UserByLogin(ctx context.Context, login string) (int, error)

	// ListMappings returns all correlation entries for a scope.
	ListMappings(ctx context.Context, scope ledger.Scope) ([]ledger.Entry, error)

	// AddMappings appends correlation entries for a scope.
	AddMappings(ctx context.Context, scope ledger.Scope, entries []ledger.Entry) error
}

// MappingStore adapts a LocalTracker's mapping tables to the ledger's
// persistence contract.
type MappingStore struct {
	Local LocalTracker
}

// List implements ledger.Store.
func (s *MappingStore) List(ctx context.Context, scope ledger.Scope) ([]ledger.Entry, error) {
	return s.Local.ListMappings(ctx, scope)
}

// Add implements ledger.Store.
func (s *MappingStore) Add(ctx context.Context, scope ledger.Scope, entries []ledger.Entry) error {
	return s.Local.AddMappings(ctx, scope, entries)
}
