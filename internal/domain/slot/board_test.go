package slot

import (
	"testing"

	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/stretchr/testify/require"
)

func testGuide(id int) guide.Guide {
	return guide.Guide{ID: id, Name: "g", Languages: []string{"ID"}}
}

func guideIDs(s Slot) []int {
	ids := []int{}
	for _, g := range s.Guides {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestDefaults(t *testing.T) {
	slots := Defaults([]string{"08:30", "09:30"}, 0)
	require.Len(t, slots, 2)
	require.Equal(t, 1, slots[0].ID)
	require.Equal(t, "09:30", slots[1].TimeLabel)
	require.Equal(t, DefaultCapacity, slots[0].Capacity)
	require.NotNil(t, slots[0].Guides)
}

func TestBoard_AssignRespectsCapacity(t *testing.T) {
	b := NewBoard([]string{"08:30"}, 2)

	require.True(t, b.Assign(1, testGuide(1)))
	require.True(t, b.Assign(1, testGuide(2)))
	before, _ := b.Slot(1)

	require.False(t, b.CanAssign(1, 3))
	require.False(t, b.Assign(1, testGuide(3)))

	after, _ := b.Slot(1)
	require.Equal(t, before, after)
	require.Equal(t, []int{1, 2}, guideIDs(after))
}

func TestBoard_AssignRejectsDuplicateAndUnknownSlot(t *testing.T) {
	b := NewBoard([]string{"08:30", "09:30"}, 5)
	require.True(t, b.Assign(1, testGuide(1)))
	require.False(t, b.Assign(1, testGuide(1)))
	require.False(t, b.Assign(9, testGuide(2)))

	s, _ := b.Slot(1)
	require.Equal(t, []int{1}, guideIDs(s))
	require.True(t, b.Contains(1))
	require.False(t, b.Contains(2))
}

func TestBoard_Release(t *testing.T) {
	b := NewBoard([]string{"08:30"}, 5)
	b.Assign(1, testGuide(1))
	b.Assign(1, testGuide(2))
	b.Assign(1, testGuide(3))

	g, ok := b.Release(1, 2)
	require.True(t, ok)
	require.Equal(t, 2, g.ID)
	s, _ := b.Slot(1)
	require.Equal(t, []int{1, 3}, guideIDs(s))

	_, ok = b.Release(1, 2)
	require.False(t, ok)
	_, ok = b.Release(7, 1)
	require.False(t, ok)
}

func TestBoard_ReleaseAll(t *testing.T) {
	b := NewBoard([]string{"08:30"}, 5)
	require.Nil(t, b.ReleaseAll(1))

	b.Assign(1, testGuide(1))
	b.Assign(1, testGuide(2))

	released := b.ReleaseAll(1)
	require.Len(t, released, 2)
	require.Equal(t, 1, released[0].ID)
	require.Equal(t, 2, released[1].ID)

	s, _ := b.Slot(1)
	require.Empty(t, s.Guides)
	require.Nil(t, b.ReleaseAll(1))
}

func TestBoard_SlotsAreCopies(t *testing.T) {
	b := NewBoard([]string{"08:30"}, 5)
	b.Assign(1, testGuide(1))

	slots := b.Slots()
	slots[0].Guides[0].Name = "changed"
	slots[0].Guides = nil

	s, _ := b.Slot(1)
	require.Equal(t, "g", s.Guides[0].Name)
	require.Equal(t, []int{1}, b.GuideIDs())
}
