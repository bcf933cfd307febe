package queue

import "github.com/rpggio/guidequeue/internal/domain/guide"

// Queue is an ordered first-come-first-served waiting list. A guide id
// appears at most once. Mutators report whether the queue changed.
type Queue struct {
	entries []Entry
}

// New returns a queue holding copies of entries. Later duplicates of a
// guide id are dropped.
func New(entries []Entry) *Queue {
	q := &Queue{}
	for _, e := range entries {
		if q.index(e.Guide.ID) >= 0 {
			continue
		}
		q.entries = append(q.entries, e.Clone())
	}
	return q
}

// CheckIn appends g with the given check-in time unless already queued.
func (q *Queue) CheckIn(g guide.Guide, now int64) bool {
	if q.index(g.ID) >= 0 {
		return false
	}
	q.entries = append(q.entries, Entry{Guide: g.WithCheckIn(now), Status: StatusActive})
	return true
}

// Turun moves the guide to the tail keeping its entry unchanged.
func (q *Queue) Turun(guideID int) bool {
	i := q.index(guideID)
	if i < 0 {
		return false
	}
	entry := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	q.entries = append(q.entries, entry)
	return true
}

// SetTag sets the entry tag. A nil or empty tag clears it.
func (q *Queue) SetTag(guideID int, tag *string) bool {
	i := q.index(guideID)
	if i < 0 {
		return false
	}
	var next *string
	if tag != nil && *tag != "" {
		value := *tag
		next = &value
	}
	current := q.entries[i].Guide.Tag
	if (current == nil && next == nil) || (current != nil && next != nil && *current == *next) {
		return false
	}
	q.entries[i].Guide.Tag = next
	return true
}

// Remove deletes the guide's entry and returns it.
func (q *Queue) Remove(guideID int) (Entry, bool) {
	i := q.index(guideID)
	if i < 0 {
		return Entry{}, false
	}
	entry := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return entry, true
}

// Requeue drops any entry for g and appends a fresh one stamped now.
func (q *Queue) Requeue(g guide.Guide, now int64) {
	q.Remove(g.ID)
	q.entries = append(q.entries, Entry{Guide: g.WithCheckIn(now), Status: StatusActive})
}

// Reset empties the queue.
func (q *Queue) Reset() bool {
	if len(q.entries) == 0 {
		return false
	}
	q.entries = nil
	return true
}

// Contains reports whether the guide is queued.
func (q *Queue) Contains(guideID int) bool {
	return q.index(guideID) >= 0
}

// Get returns a copy of the guide's entry.
func (q *Queue) Get(guideID int) (Entry, bool) {
	i := q.index(guideID)
	if i < 0 {
		return Entry{}, false
	}
	return q.entries[i].Clone(), true
}

// Entries returns a deep copy of the queue in order.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.Clone())
	}
	return out
}

// IDs returns guide ids in queue order.
func (q *Queue) IDs() []int {
	ids := make([]int, 0, len(q.entries))
	for _, e := range q.entries {
		ids = append(ids, e.Guide.ID)
	}
	return ids
}

// Len returns the number of waiting guides.
func (q *Queue) Len() int {
	return len(q.entries)
}

func (q *Queue) index(guideID int) int {
	for i, e := range q.entries {
		if e.Guide.ID == guideID {
			return i
		}
	}
	return -1
}
