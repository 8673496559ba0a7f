package trackers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/syncbridge/pkg/trackers"
)

func TestSlotNames(t *testing.T) {
	assert.Equal(t, trackers.Slot("TEXT_01"), trackers.TextSlot(1))
	assert.Equal(t, trackers.Slot("TEXT_10"), trackers.TextSlot(10))
	assert.Equal(t, trackers.Slot("LIST_03"), trackers.ListSlot(3))
}

func TestArtifactReleaseRef(t *testing.T) {
	a := trackers.Artifact{}
	_, ok := a.ReleaseRef()
	assert.False(t, ok)

	a.DetectedReleaseID = 10
	id, ok := a.ReleaseRef()
	assert.True(t, ok)
	assert.Equal(t, 10, id)

	// The resolved reference takes precedence over the detected one.
	a.ResolvedReleaseID = 20
	id, ok = a.ReleaseRef()
	assert.True(t, ok)
	assert.Equal(t, 20, id)
}

func TestArtifactSlotAccessors(t *testing.T) {
	a := trackers.Artifact{}
	a.SetTextProp(trackers.TextSlot(1), "note")
	a.SetListProp(trackers.ListSlot(2), 7)

	assert.Equal(t, "note", a.TextProp(trackers.TextSlot(1)))
	v, ok := a.ListProp(trackers.ListSlot(2))
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = a.ListProp(trackers.ListSlot(3))
	assert.False(t, ok)
}

func TestItemFieldAccessors(t *testing.T) {
	it := trackers.Item{}
	it.SetField(trackers.FieldTitle, "t")
	assert.Equal(t, "t", it.FieldString(trackers.FieldTitle))

	it.SetField(trackers.FieldPriority, 2)
	assert.Equal(t, "", it.FieldString(trackers.FieldPriority)) // not a string
	assert.Equal(t, 2, it.Field(trackers.FieldPriority))
}

func TestNodeTreeLookups(t *testing.T) {
	root := &trackers.Node{
		ID:   1,
		Name: "PROJ",
		Path: "PROJ",
		Children: []*trackers.Node{
			{ID: 2, Name: "Sprint 1", Path: "PROJ\\Sprint 1"},
			{ID: 3, Name: "Sprint 2", Path: "PROJ\\Sprint 2", Children: []*trackers.Node{
				{ID: 4, Name: "Week 1", Path: "PROJ\\Sprint 2\\Week 1"},
			}},
		},
	}

	assert.Equal(t, 4, root.FindByID(4).ID)
	assert.Nil(t, root.FindByID(99))
	assert.Equal(t, "Week 1", root.FindByPath("PROJ\\Sprint 2\\Week 1").Name)
	assert.Nil(t, root.FindByPath("PROJ\\Sprint 9"))
}

func TestValidationResultInvalidFields(t *testing.T) {
	vr := &trackers.ValidationResult{
		Valid: false,
		Fields: map[string]string{
			trackers.FieldTitle: "required",
			trackers.FieldState: "unknown value",
		},
	}
	assert.ElementsMatch(t, []string{trackers.FieldTitle, trackers.FieldState}, vr.InvalidFields())
}
