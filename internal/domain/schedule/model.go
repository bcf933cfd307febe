package schedule

import (
	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
)

// State is everything a dashboard renders for the active session.
type State struct {
	Session    session.ID    `json:"session"`
	Queue      []queue.Entry `json:"queue"`
	Slots      []slot.Slot   `json:"slots"`
	BusyIDs    []int         `json:"busyIds"`
	PresentIDs []int         `json:"presentIds"`
}

// checkpoint is the active session's state before a command.
type checkpoint struct {
	entries []queue.Entry
	slots   []slot.Slot
}
