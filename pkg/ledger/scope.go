package ledger

import (
	"fmt"
	"slices"
	"strings"
)

// Scope identifies one mapping table in the correlation ledger. Artifact
// scopes correlate whole records; field scopes correlate enumerated values
// (status, priority, type) and custom list property values.
type Scope string

// String returns the string representation of a scope.
func (s Scope) String() string {
	return string(s)
}

// Artifact scopes.
const (
	ScopeIncident Scope = "incident"
	ScopeTask     Scope = "task"
	ScopeRelease  Scope = "release"
	ScopeUser     Scope = "user"
)

// Enumerated field scopes.
const (
	ScopeStatus   Scope = "status"
	ScopePriority Scope = "priority"
	ScopeType     Scope = "type"
)

// customListPrefix prefixes scopes for custom list property value tables.
const customListPrefix = "custom_list_"

// CustomList returns the scope for the value table of the numbered custom
// list property slot (LIST_01..LIST_10).
func CustomList(number int) Scope {
	return Scope(fmt.Sprintf("%s%02d", customListPrefix, number))
}

// IsCustomList reports whether the scope is a custom list value table.
func (s Scope) IsCustomList() bool {
	return strings.HasPrefix(string(s), customListPrefix)
}

// ProjectScoped reports whether entries in this scope are partitioned by
// project. Users are correlated once for the whole installation.
func (s Scope) ProjectScoped() bool {
	return s != ScopeUser
}

// Scopes returns the fixed (non custom list) scopes.
func Scopes() []Scope {
	return []Scope{
		ScopeIncident,
		ScopeTask,
		ScopeRelease,
		ScopeUser,
		ScopeStatus,
		ScopePriority,
		ScopeType,
	}
}

// IsValid returns true if the scope is a fixed scope or a custom list scope.
func (s Scope) IsValid() bool {
	return slices.Contains(Scopes(), s) || s.IsCustomList()
}
