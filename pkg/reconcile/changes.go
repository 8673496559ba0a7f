package reconcile

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Changes is the per-pair diff builder. Callers record every field they
// intend to set together with its current value; only real differences are
// kept. One dirty check then replaces the scattered changed-flags of a
// field-by-field write path, and a write is issued only when at least one
// field actually differs.
type Changes struct {
	fields map[string]any
}

// NewChanges creates an empty diff builder.
func NewChanges() *Changes {
	return &Changes{fields: make(map[string]any)}
}

// Set records the desired value for a field when it differs from the
// current value. Equal values are dropped.
func (c *Changes) Set(field string, current, desired any) {
	if equalValues(current, desired) {
		return
	}
	c.fields[field] = desired
}

// Force records the desired value unconditionally. Used for fields whose
// current value cannot be read back (write-only custom storage).
func (c *Changes) Force(field string, desired any) {
	c.fields[field] = desired
}

// Dirty reports whether at least one field differs.
func (c *Changes) Dirty() bool {
	return len(c.fields) > 0
}

// Len returns the number of differing fields.
func (c *Changes) Len() int {
	return len(c.fields)
}

// Get returns the desired value for a field and whether it differs.
func (c *Changes) Get(field string) (any, bool) {
	v, ok := c.fields[field]
	return v, ok
}

// Fields returns the differing field names, sorted for stable logs.
func (c *Changes) Fields() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply invokes fn for every differing field.
func (c *Changes) Apply(fn func(field string, desired any)) {
	for _, name := range c.Fields() {
		fn(name, c.fields[name])
	}
}

// String returns a compact summary for logs.
func (c *Changes) String() string {
	if !c.Dirty() {
		return "no changes"
	}
	return fmt.Sprintf("%d changed: %s", c.Len(), strings.Join(c.Fields(), ", "))
}

// equalValues compares current and desired values. Numeric values compare
// by magnitude so that an int current value matches a float64 desired one
// read back from a generic field map.
func equalValues(current, desired any) bool {
	if current == nil && desired == nil {
		return true
	}
	if current == nil || desired == nil {
		return false
	}
	if cf, ok := toFloat(current); ok {
		if df, ok := toFloat(desired); ok {
			return cf == df
		}
		return false
	}
	return reflect.DeepEqual(current, desired)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
