package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/syncbridge/pkg/trackers"
)

// Remote is an in-memory RemoteTracker. Node creation models the real
// system's eventual consistency: a created node stays invisible to lookups
// for a configurable number of polls.
type Remote struct {
	mu sync.RWMutex

	items  map[int]trackers.Item
	fields map[string][]trackers.FieldDef // keyed by item type
	roots  map[string]*trackers.Node      // keyed by project

	nextItemID int
	nextNodeID int

	// NodeVisibilityPolls is how many NodeByID/NodeByPath calls a newly
	// created node stays invisible for. Zero means immediately visible.
	NodeVisibilityPolls int
	pendingNodes        map[int]*pendingNode

	// AuthErr, when set, is returned from Authenticate.
	AuthErr error

	// ProjectErr maps project names to OpenProject failures.
	ProjectErr map[string]error

	// ValidateHook, when set, overrides validation for an item.
	ValidateHook func(item *trackers.Item) *trackers.ValidationResult

	// Saves counts Save calls, for no-op idempotence assertions.
	Saves int

	// NodeCreates counts CreateNode calls, for duplicate-creation
	// assertions.
	NodeCreates int
}

type pendingNode struct {
	node      *trackers.Node
	project   string
	remaining int
}

// NewRemote creates an empty in-memory remote tracker.
func NewRemote(projects ...string) *Remote {
	r := &Remote{
		items:        make(map[int]trackers.Item),
		fields:       make(map[string][]trackers.FieldDef),
		roots:        make(map[string]*trackers.Node),
		pendingNodes: make(map[int]*pendingNode),
		ProjectErr:   make(map[string]error),
		nextItemID:   5000,
		nextNodeID:   200,
	}
	for _, p := range projects {
		r.roots[p] = &trackers.Node{ID: r.nextNodeID, Name: p, Path: p}
		r.nextNodeID++
	}
	return r
}

// Authenticate implements trackers.RemoteTracker.
func (r *Remote) Authenticate(_ context.Context) error {
	return r.AuthErr
}

// OpenProject implements trackers.RemoteTracker.
func (r *Remote) OpenProject(_ context.Context, project string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ProjectErr[project]
}

// Seed inserts an item as-is, keeping its id. Test setup helper.
func (r *Remote) Seed(item trackers.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	if item.ID >= r.nextItemID {
		r.nextItemID = item.ID + 1
	}
}

// SeedFieldDefs registers field definitions for an item type.
func (r *Remote) SeedFieldDefs(itemType string, defs []trackers.FieldDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[itemType] = defs
}

// QueryChangedSince implements trackers.RemoteTracker.
func (r *Remote) QueryChangedSince(_ context.Context, project string, since time.Time) ([]trackers.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []trackers.Item
	for _, it := range r.items {
		if it.Project == project && it.ChangedAt.After(since) {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetByID implements trackers.RemoteTracker.
func (r *Remote) GetByID(_ context.Context, id int) (*trackers.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	out := it
	return &out, nil
}

// Create implements trackers.RemoteTracker.
func (r *Remote) Create(_ context.Context, project, itemType string, fields map[string]any) (*trackers.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := trackers.Item{
		ID:        r.nextItemID,
		Project:   project,
		Type:      itemType,
		Rev:       1,
		ChangedAt: time.Now().UTC(),
		Fields:    make(map[string]any, len(fields)),
	}
	r.nextItemID++
	for k, v := range fields {
		item.Fields[k] = v
	}
	r.items[item.ID] = item
	out := item
	return &out, nil
}

// Validate implements trackers.RemoteTracker.
func (r *Remote) Validate(_ context.Context, item *trackers.Item) (*trackers.ValidationResult, error) {
	if r.ValidateHook != nil {
		return r.ValidateHook(item), nil
	}
	return &trackers.ValidationResult{Valid: true}, nil
}

// Save implements trackers.RemoteTracker.
func (r *Remote) Save(_ context.Context, item *trackers.Item) (*trackers.ValidationResult, error) {
	if r.ValidateHook != nil {
		if result := r.ValidateHook(item); !result.Valid {
			return result, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *item
	stored.Rev++
	stored.ChangedAt = time.Now().UTC()
	r.items[item.ID] = stored
	r.Saves++
	return &trackers.ValidationResult{Valid: true}, nil
}

// ListFieldDefinitions implements trackers.RemoteTracker.
func (r *Remote) ListFieldDefinitions(_ context.Context, _, itemType string) ([]trackers.FieldDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fields[itemType], nil
}

// IterationRoot implements trackers.RemoteTracker.
func (r *Remote) IterationRoot(_ context.Context, project string) (*trackers.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roots[project], nil
}

// NodeByID implements trackers.RemoteTracker.
func (r *Remote) NodeByID(_ context.Context, project string, id int) (*trackers.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.revealPending(id) {
		return r.roots[project].FindByID(id), nil
	}
	if _, pending := r.pendingNodes[id]; pending {
		return nil, nil
	}
	return r.roots[project].FindByID(id), nil
}

// NodeByPath implements trackers.RemoteTracker.
func (r *Remote) NodeByPath(_ context.Context, project, path string) (*trackers.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.pendingNodes {
		if p.project == project && strings.EqualFold(p.node.Path, path) {
			if r.revealPending(id) {
				return r.roots[project].FindByPath(path), nil
			}
			return nil, nil
		}
	}
	return r.roots[project].FindByPath(path), nil
}

// CreateNode implements trackers.RemoteTracker.
func (r *Remote) CreateNode(_ context.Context, project, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.NodeCreates++
	node := &trackers.Node{
		ID:   r.nextNodeID,
		Name: name,
		Path: project + "\\" + name,
	}
	r.nextNodeID++

	if r.NodeVisibilityPolls <= 0 {
		r.attach(project, node)
	} else {
		r.pendingNodes[node.ID] = &pendingNode{
			node:      node,
			project:   project,
			remaining: r.NodeVisibilityPolls,
		}
	}
	return node.ID, nil
}

// revealPending decrements the pending counter for a node and attaches it
// to the tree once the counter runs out. Caller holds the lock.
func (r *Remote) revealPending(id int) bool {
	p, ok := r.pendingNodes[id]
	if !ok {
		return false
	}
	p.remaining--
	if p.remaining > 0 {
		return false
	}
	r.attach(p.project, p.node)
	delete(r.pendingNodes, id)
	return true
}

// attach adds a node under the project root. Caller holds the lock.
func (r *Remote) attach(project string, node *trackers.Node) {
	root := r.roots[project]
	if root == nil {
		root = &trackers.Node{ID: r.nextNodeID, Name: project, Path: project}
		r.nextNodeID++
		r.roots[project] = root
	}
	root.Children = append(root.Children, node)
}
