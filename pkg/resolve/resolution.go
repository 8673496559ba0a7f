package resolve

import "github.com/agentstation/syncbridge/pkg/ledger"

// State is the outcome of the three-tier container lookup.
type State int

const (
	// NotFound means neither the persisted ledger nor the run-local
	// buffer knows the container; it must be created.
	NotFound State = iota

	// Found means the persisted ledger already correlates the container.
	Found

	// PendingThisRun means the container was created earlier in this run
	// and its correlation sits in the run-local buffer, not yet visible
	// through a refreshed ledger.
	PendingThisRun
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case PendingThisRun:
		return "pending-this-run"
	default:
		return "not-found"
	}
}

// Resolution is the result of looking up a container across the persisted
// ledger and the run-local buffer.
type Resolution struct {
	State State
	Entry ledger.Entry
}

// Exists reports whether the container is correlated, persisted or pending.
func (r Resolution) Exists() bool {
	return r.State != NotFound
}
