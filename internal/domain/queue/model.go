package queue

import "github.com/rpggio/guidequeue/internal/domain/guide"

// Status is the lifecycle status of a queue entry.
type Status string

const (
	StatusActive Status = "ACTIVE"
	// StatusMandu is reserved for a future in-progress state. No operation
	// produces it.
	StatusMandu Status = "MANDU"
)

// Entry is one waiting guide. It owns a snapshot of the guide taken at
// check-in, so tag edits never reach the roster.
type Entry struct {
	Guide  guide.Guide `json:"guide"`
	Status Status      `json:"status"`
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	return Entry{Guide: e.Guide.Clone(), Status: e.Status}
}
