package trackers

import (
	"context"
	"time"
)

// RemoteTracker is the adapter contract for the remote record system.
//
// CreateNode is not immediately consistent: a node returned from it may not
// yet be visible through NodeByID/NodeByPath, and callers poll for
// visibility before referencing it.
type RemoteTracker interface {
	// Authenticate establishes the session. Failure is fatal for the
	// whole run.
	Authenticate(ctx context.Context) error

	// OpenProject verifies the remote project is reachable. Failure is
	// fatal for that project only.
	OpenProject(ctx context.Context, project string) error

	// QueryChangedSince returns items in the project changed after the
	// given timestamp.
	QueryChangedSince(ctx context.Context, project string, since time.Time) ([]Item, error)

	// GetByID returns one item, or nil when it does not exist.
	GetByID(ctx context.Context, id int) (*Item, error)

	// Create writes a new item of the type with the given fields and
	// returns it with its assigned id.
	Create(ctx context.Context, project, itemType string, fields map[string]any) (*Item, error)

	// Validate runs the remote tracker's field validation without saving.
	Validate(ctx context.Context, item *Item) (*ValidationResult, error)

	// Save writes the item. The validation result reports field-level
	// rejections when the save is refused.
	Save(ctx context.Context, item *Item) (*ValidationResult, error)

	// ListFieldDefinitions returns the fields accepted for an item type.
	ListFieldDefinitions(ctx context.Context, project, itemType string) ([]FieldDef, error)

	// IterationRoot returns the project's iteration container tree.
	IterationRoot(ctx context.Context, project string) (*Node, error)

	// NodeByID returns a container node by id, or nil when not visible.
	NodeByID(ctx context.Context, project string, id int) (*Node, error)

	// NodeByPath returns a container node by path, or nil when not
	// visible.
	NodeByPath(ctx context.Context, project, path string) (*Node, error)

	// CreateNode creates an iteration container under the project root
	// and returns its id. See the consistency note on the interface.
	CreateNode(ctx context.Context, project, name string) (int, error)
}
