// Package trackers defines the domain types and adapter contracts for the
// two record systems the engine reconciles: the local tracker (artifacts,
// custom property slots, mapping tables) and the remote tracker (work
// items, field definitions, container node trees). Concrete transports are
// out of scope; the engine accepts any implementation of these interfaces.
package trackers

import (
	"fmt"
	"time"
)

// Kind identifies a local artifact kind.
type Kind string

// Artifact kinds the engine reconciles.
const (
	KindIncident Kind = "incidents"
	KindTask     Kind = "tasks"
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	return string(k)
}

// Kinds returns all artifact kinds.
func Kinds() []Kind {
	return []Kind{KindIncident, KindTask}
}

// Slot names a fixed custom property slot on a local artifact.
// Text slots hold free-form strings, list slots hold enumerated value ids.
type Slot string

// TextSlot returns the numbered text slot name (TEXT_01..TEXT_10).
func TextSlot(n int) Slot {
	return Slot(fmt.Sprintf("TEXT_%02d", n))
}

// ListSlot returns the numbered list slot name (LIST_01..LIST_10).
func ListSlot(n int) Slot {
	return Slot(fmt.Sprintf("LIST_%02d", n))
}

// SlotCount is the number of slots of each type a local artifact carries.
const SlotCount = 10

// Artifact is a record in the local tracker.
type Artifact struct {
	ID        int
	ProjectID int
	Kind      Kind

	Name        string
	Description string // rich text (HTML)

	StatusID   int
	PriorityID int
	TypeID     int
	OwnerID    int

	// Container references. DetectedReleaseID is the fallback when
	// ResolvedReleaseID is unset.
	ResolvedReleaseID int
	DetectedReleaseID int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Custom property slots.
	Text map[Slot]string
	List map[Slot]int
}

// TextProp returns the value of a text slot.
func (a *Artifact) TextProp(slot Slot) string {
	return a.Text[slot]
}

// SetTextProp sets the value of a text slot.
func (a *Artifact) SetTextProp(slot Slot, value string) {
	if a.Text == nil {
		a.Text = make(map[Slot]string)
	}
	a.Text[slot] = value
}

// ListProp returns the value id of a list slot and whether it is set.
func (a *Artifact) ListProp(slot Slot) (int, bool) {
	v, ok := a.List[slot]
	return v, ok
}

// SetListProp sets the value id of a list slot.
func (a *Artifact) SetListProp(slot Slot, valueID int) {
	if a.List == nil {
		a.List = make(map[Slot]int)
	}
	a.List[slot] = valueID
}

// ReleaseRef returns the container reference to use for this artifact:
// the resolved release when set, otherwise the detected release.
// The second return is false when neither is set.
func (a *Artifact) ReleaseRef() (int, bool) {
	if a.ResolvedReleaseID != 0 {
		return a.ResolvedReleaseID, true
	}
	if a.DetectedReleaseID != 0 {
		return a.DetectedReleaseID, true
	}
	return 0, false
}
