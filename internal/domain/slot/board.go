package slot

import "github.com/rpggio/guidequeue/internal/domain/guide"

// Board is the ordered set of slots of one session.
type Board struct {
	slots []Slot
}

// NewBoard returns a board of empty slots for labels.
func NewBoard(labels []string, capacity int) *Board {
	return &Board{slots: Defaults(labels, capacity)}
}

// BoardFrom returns a board holding copies of slots.
func BoardFrom(slots []Slot) *Board {
	b := &Board{slots: make([]Slot, 0, len(slots))}
	for _, s := range slots {
		b.slots = append(b.slots, s.Clone())
	}
	return b
}

// CanAssign reports whether the guide can join the slot: the slot exists,
// the guide is not already in it and the slot has room.
func (b *Board) CanAssign(slotID, guideID int) bool {
	i := b.index(slotID)
	if i < 0 {
		return false
	}
	s := b.slots[i]
	return !s.Has(guideID) && !s.Full()
}

// Assign appends a copy of g to the slot when CanAssign allows it.
func (b *Board) Assign(slotID int, g guide.Guide) bool {
	if !b.CanAssign(slotID, g.ID) {
		return false
	}
	i := b.index(slotID)
	b.slots[i].Guides = append(b.slots[i].Guides, g.Clone())
	return true
}

// Release removes one guide from the slot.
func (b *Board) Release(slotID, guideID int) (guide.Guide, bool) {
	i := b.index(slotID)
	if i < 0 {
		return guide.Guide{}, false
	}
	guides := b.slots[i].Guides
	for j, g := range guides {
		if g.ID == guideID {
			b.slots[i].Guides = append(guides[:j:j], guides[j+1:]...)
			return g, true
		}
	}
	return guide.Guide{}, false
}

// ReleaseAll empties the slot and returns its guides in slot order.
func (b *Board) ReleaseAll(slotID int) []guide.Guide {
	i := b.index(slotID)
	if i < 0 || len(b.slots[i].Guides) == 0 {
		return nil
	}
	released := b.slots[i].Guides
	b.slots[i].Guides = []guide.Guide{}
	return released
}

// Slot returns a copy of the slot.
func (b *Board) Slot(slotID int) (Slot, bool) {
	i := b.index(slotID)
	if i < 0 {
		return Slot{}, false
	}
	return b.slots[i].Clone(), true
}

// Slots returns deep copies of all slots in order.
func (b *Board) Slots() []Slot {
	out := make([]Slot, 0, len(b.slots))
	for _, s := range b.slots {
		out = append(out, s.Clone())
	}
	return out
}

// Contains reports whether the guide is in any slot of the board.
func (b *Board) Contains(guideID int) bool {
	for _, s := range b.slots {
		if s.Has(guideID) {
			return true
		}
	}
	return false
}

// GuideIDs returns the ids of all assigned guides in slot order.
func (b *Board) GuideIDs() []int {
	var ids []int
	for _, s := range b.slots {
		for _, g := range s.Guides {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func (b *Board) index(slotID int) int {
	for i, s := range b.slots {
		if s.ID == slotID {
			return i
		}
	}
	return -1
}
