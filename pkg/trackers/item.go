package trackers

import "time"

// Well-known remote field reference names. The first group is generic; the
// second group holds the structural fields that custom properties may map
// to, which need dedicated write paths rather than the generic field map.
const (
	FieldTitle       = "System.Title"
	FieldDescription = "System.Description"
	FieldState       = "System.State"
	FieldReason      = "System.Reason"
	FieldAssignedTo  = "System.AssignedTo"
	FieldChangedDate = "System.ChangedDate"
	FieldPriority    = "Microsoft.VSTS.Common.Priority"
)

// Default names of the special structural target fields. Each can be
// overridden by configuration, since site installations rename them.
const (
	DefaultRankField       = "Microsoft.VSTS.Common.StackRank"
	DefaultTriageField     = "Microsoft.VSTS.Common.Triage"
	DefaultAreaField       = "System.AreaPath"
	DefaultDisciplineField = "Microsoft.VSTS.Common.Discipline"
)

// Item is a record in the remote tracker: an id, a type, and a flat field
// map keyed by reference name.
type Item struct {
	ID        int
	Project   string
	Type      string
	Rev       int
	ChangedAt time.Time

	Fields map[string]any

	// Structural attributes outside the generic field map.
	IterationID int
	AreaID      int
}

// Field returns the value of a field by reference name.
func (it *Item) Field(name string) any {
	return it.Fields[name]
}

// FieldString returns a field coerced to string, empty when unset.
func (it *Item) FieldString(name string) string {
	if v, ok := it.Fields[name].(string); ok {
		return v
	}
	return ""
}

// SetField sets a field by reference name.
func (it *Item) SetField(name string, value any) {
	if it.Fields == nil {
		it.Fields = make(map[string]any)
	}
	it.Fields[name] = value
}

// FieldDef describes a field the remote tracker accepts for an item type.
type FieldDef struct {
	Name          string
	ReferenceName string
	Type          string // "string", "html", "integer", "treePath", ...
	ReadOnly      bool
	AllowedValues []string
}

// ValidationResult carries the remote tracker's pre-save field validation.
// Fields maps offending reference names to their rejection messages.
type ValidationResult struct {
	Valid  bool
	Fields map[string]string
}

// InvalidFields returns the offending field names.
func (v *ValidationResult) InvalidFields() []string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	return names
}

// Node is a container entity in the remote tracker's hierarchical
// iteration/area tree.
type Node struct {
	ID       int
	Name     string
	Path     string
	Children []*Node
}

// FindByPath walks the subtree for a node with the given path.
func (n *Node) FindByPath(path string) *Node {
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindByPath(path); found != nil {
			return found
		}
	}
	return nil
}

// FindByID walks the subtree for a node with the given id.
func (n *Node) FindByID(id int) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}
