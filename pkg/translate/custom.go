package translate

import (
	"strconv"
	"strings"

	"github.com/agentstation/syncbridge/pkg/trackers"
)

// SpecialKind classifies the remote structural fields that custom
// properties may target. They map to structural attributes on the remote
// side, not generic custom storage, so each needs a dedicated write path.
type SpecialKind int

// Special structural targets.
const (
	SpecialRank SpecialKind = iota + 1
	SpecialTriage
	SpecialArea
	SpecialDiscipline
)

// String returns a human-readable name for the special kind.
func (k SpecialKind) String() string {
	switch k {
	case SpecialRank:
		return "rank"
	case SpecialTriage:
		return "triage"
	case SpecialArea:
		return "area"
	case SpecialDiscipline:
		return "discipline"
	default:
		return "unknown"
	}
}

// SpecialFields holds the remote names of the structural target fields.
// Installations rename these, so each default can be overridden.
type SpecialFields struct {
	Rank       string
	Triage     string
	Area       string
	Discipline string
}

// DefaultSpecialFields returns the stock remote field names.
func DefaultSpecialFields() SpecialFields {
	return SpecialFields{
		Rank:       trackers.DefaultRankField,
		Triage:     trackers.DefaultTriageField,
		Area:       trackers.DefaultAreaField,
		Discipline: trackers.DefaultDisciplineField,
	}
}

// Kind classifies a remote field name, reporting whether it is one of the
// special structural targets.
func (s SpecialFields) Kind(field string) (SpecialKind, bool) {
	switch field {
	case s.Rank:
		return SpecialRank, true
	case s.Triage:
		return SpecialTriage, true
	case s.Area:
		return SpecialArea, true
	case s.Discipline:
		return SpecialDiscipline, true
	default:
		return 0, false
	}
}

// PropertyMap is the property-level mapping: which remote field, if any,
// each local custom property slot writes to. List-typed slots additionally
// carry a value-level table in the ledger, keyed by slot number.
type PropertyMap struct {
	fields map[trackers.Slot]string
}

// NewPropertyMap creates a property map from slot-to-remote-field pairs.
func NewPropertyMap(fields map[trackers.Slot]string) *PropertyMap {
	m := make(map[trackers.Slot]string, len(fields))
	for slot, field := range fields {
		if field != "" {
			m[slot] = field
		}
	}
	return &PropertyMap{fields: m}
}

// RemoteField returns the remote field a slot maps to, if any. An unmapped
// slot is simply not synchronized.
func (m *PropertyMap) RemoteField(slot trackers.Slot) (string, bool) {
	field, ok := m.fields[slot]
	return field, ok
}

// Slots returns the mapped slots.
func (m *PropertyMap) Slots() []trackers.Slot {
	slots := make([]trackers.Slot, 0, len(m.fields))
	for slot := range m.fields {
		slots = append(slots, slot)
	}
	return slots
}

// SlotNumber extracts the numeric suffix of a slot name (TEXT_03 -> 3).
// Returns 0 for malformed names.
func SlotNumber(slot trackers.Slot) int {
	s := string(slot)
	idx := strings.LastIndex(s, "_")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// IsListSlot reports whether a slot holds enumerated value ids.
func IsListSlot(slot trackers.Slot) bool {
	return strings.HasPrefix(string(slot), "LIST_")
}

// IsTextSlot reports whether a slot holds free-form text.
func IsTextSlot(slot trackers.Slot) bool {
	return strings.HasPrefix(string(slot), "TEXT_")
}
