// Package attendance derives the cross-session busy and present sets by
// re-reading every session's stored queue and slots.
package attendance

import (
	"context"
	"sort"

	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
)

// Reader loads stored session state.
type Reader interface {
	LoadQueue(ctx context.Context, id session.ID) []queue.Entry
	LoadSlots(ctx context.Context, id session.ID) []slot.Slot
}

// Snapshot is the result of one full scan. Busy is always a subset of
// Present.
type Snapshot struct {
	busy    map[int]struct{}
	present map[int]struct{}
}

// IsBusy reports whether the guide occupies a slot in any session.
func (s Snapshot) IsBusy(guideID int) bool {
	_, ok := s.busy[guideID]
	return ok
}

// IsPresent reports whether the guide is queued or slotted in any session.
func (s Snapshot) IsPresent(guideID int) bool {
	_, ok := s.present[guideID]
	return ok
}

// BusyIDs returns the busy set in ascending order.
func (s Snapshot) BusyIDs() []int {
	return sortedKeys(s.busy)
}

// PresentIDs returns the present set in ascending order.
func (s Snapshot) PresentIDs() []int {
	return sortedKeys(s.present)
}

// Aggregator computes snapshots from a Reader.
type Aggregator struct {
	reader Reader
}

// NewAggregator creates an Aggregator.
func NewAggregator(reader Reader) *Aggregator {
	return &Aggregator{reader: reader}
}

// Compute scans all sessions, including inactive ones.
func (a *Aggregator) Compute(ctx context.Context) Snapshot {
	snap := Snapshot{
		busy:    make(map[int]struct{}),
		present: make(map[int]struct{}),
	}
	for _, id := range session.All() {
		for _, s := range a.reader.LoadSlots(ctx, id) {
			for _, g := range s.Guides {
				snap.busy[g.ID] = struct{}{}
				snap.present[g.ID] = struct{}{}
			}
		}
		for _, e := range a.reader.LoadQueue(ctx, id) {
			snap.present[e.Guide.ID] = struct{}{}
		}
	}
	return snap
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
