// Package reconcile decides, for each correlated artifact pair, which side
// wins a pass and whether a write is needed at all. The direction decision
// uses adjusted timestamps; the diff builder compares every field against
// its current value so unchanged artifacts never generate a write. Both
// together are what keep repeated runs idempotent and free of update
// ping-pong.
package reconcile

import "time"

// Direction is the per-pair outcome of conflict resolution.
type Direction int

const (
	// DirectionNone means neither side changed since the last sync; no
	// write occurs this pass.
	DirectionNone Direction = iota

	// DirectionLocalWins means the local artifact's change is applied to
	// the remote item.
	DirectionLocalWins

	// DirectionRemoteWins means the remote item's change is applied to
	// the local artifact.
	DirectionRemoteWins
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionLocalWins:
		return "local-wins"
	case DirectionRemoteWins:
		return "remote-wins"
	default:
		return "none"
	}
}

// DefaultGuardWindow absorbs clock-offset imprecision and keeps a write
// the engine itself made in the previous pass from flapping back.
const DefaultGuardWindow = 5 * time.Minute

// Decide resolves the sync direction for one correlated pair.
//
// The clock offset compensates for the two systems' clocks disagreeing and
// applies only to the remote timestamp; the engine and the local system are
// assumed co-located. The remote side is a candidate writer when its
// adjusted timestamp plus the guard window passes lastSync; the local side
// when its raw timestamp does. With both candidates, the later adjusted
// timestamp wins and ties favor the remote.
func Decide(remoteChangedAt, localChangedAt, lastSync time.Time, clockOffset, guard time.Duration) Direction {
	adjustedRemote := remoteChangedAt.Add(clockOffset)

	remoteCandidate := adjustedRemote.Add(guard).After(lastSync)
	localCandidate := localChangedAt.After(lastSync)

	switch {
	case remoteCandidate && localCandidate:
		if localChangedAt.After(adjustedRemote) {
			return DirectionLocalWins
		}
		return DirectionRemoteWins
	case remoteCandidate:
		return DirectionRemoteWins
	case localCandidate:
		return DirectionLocalWins
	default:
		return DirectionNone
	}
}
