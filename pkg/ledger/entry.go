package ledger

import "fmt"

// Entry links an internal id to an external key within one scope. Entries
// are conceptually immutable once written; an artifact update never touches
// its correlation entry.
//
// At most one primary entry exists per (scope, project, internal id).
// Non-primary entries let several external composite keys fold onto one
// canonical internal value; they satisfy reverse lookups only when the
// caller does not require the canonical mapping.
type Entry struct {
	ProjectID   int    `yaml:"project_id"`
	InternalID  int    `yaml:"internal_id"`
	ExternalKey string `yaml:"external_key"`
	Primary     bool   `yaml:"primary"`
}

// String returns a compact representation for logs.
func (e Entry) String() string {
	marker := ""
	if e.Primary {
		marker = "*"
	}
	return fmt.Sprintf("%d/%d<->%s%s", e.ProjectID, e.InternalID, e.ExternalKey, marker)
}

// matchesProject reports whether the entry belongs to the given project.
// Project-agnostic scopes store entries with a zero project id.
func (e Entry) matchesProject(scope Scope, projectID int) bool {
	if !scope.ProjectScoped() {
		return true
	}
	return e.ProjectID == projectID
}
