package slot

import "github.com/rpggio/guidequeue/internal/domain/guide"

// DefaultCapacity is the number of guides a slot holds unless configured.
const DefaultCapacity = 5

// Slot is a capacity-bounded time slot of a session. Guides are kept in
// assignment order and never exceed Capacity.
type Slot struct {
	ID        int           `json:"id"`
	TimeLabel string        `json:"timeLabel"`
	Guides    []guide.Guide `json:"guides"`
	Capacity  int           `json:"capacity"`
}

// Clone returns a deep copy of s.
func (s Slot) Clone() Slot {
	out := s
	out.Guides = make([]guide.Guide, 0, len(s.Guides))
	for _, g := range s.Guides {
		out.Guides = append(out.Guides, g.Clone())
	}
	return out
}

// Full reports whether the slot is at capacity.
func (s Slot) Full() bool {
	return len(s.Guides) >= s.Capacity
}

// Has reports whether the guide is assigned to the slot.
func (s Slot) Has(guideID int) bool {
	for _, g := range s.Guides {
		if g.ID == guideID {
			return true
		}
	}
	return false
}

// Defaults builds empty slots with ids 1..N for the given labels.
func Defaults(labels []string, capacity int) []Slot {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	slots := make([]Slot, 0, len(labels))
	for i, label := range labels {
		slots = append(slots, Slot{
			ID:        i + 1,
			TimeLabel: label,
			Guides:    []guide.Guide{},
			Capacity:  capacity,
		})
	}
	return slots
}
