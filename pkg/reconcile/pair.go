package reconcile

import "github.com/agentstation/syncbridge/pkg/trackers"

// Pair is the ephemeral working state for one correlated artifact pair
// during a reconciliation pass. It is constructed per pass and discarded
// after; any recorded change must be flushed before discard.
type Pair struct {
	Local  *trackers.Artifact
	Remote *trackers.Item

	Direction Direction
	Changes   *Changes
}

// NewPair builds a pair and decides its direction from the pass inputs.
func NewPair(local *trackers.Artifact, remote *trackers.Item, decision Direction) *Pair {
	return &Pair{
		Local:     local,
		Remote:    remote,
		Direction: decision,
		Changes:   NewChanges(),
	}
}

// Dirty reports whether the pair has at least one field to write.
func (p *Pair) Dirty() bool {
	return p.Changes.Dirty()
}
