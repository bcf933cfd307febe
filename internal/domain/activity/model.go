package activity

import "time"

// ActivityType identifies the command that produced an entry.
type ActivityType string

const (
	TypeCheckIn         ActivityType = "check_in"
	TypeTurun           ActivityType = "turun"
	TypeTagSet          ActivityType = "set_tag"
	TypeRemoved         ActivityType = "remove_from_queue"
	TypeQueueReset      ActivityType = "reset_queue"
	TypeAssigned        ActivityType = "assign_to_slot"
	TypeSlotCompleted   ActivityType = "complete_slot"
	TypeMovedToNext     ActivityType = "move_to_next_session"
	TypeSessionSwitched ActivityType = "switch_session"
	TypeDayReset        ActivityType = "reset_day"
)

// ActivityEntry is one applied command in today's operator log.
type ActivityEntry struct {
	ID           string       `json:"id"`
	ActivityType ActivityType `json:"type"`
	Session      string       `json:"session"`
	GuideID      *int         `json:"guide_id,omitempty"`
	SlotID       *int         `json:"slot_id,omitempty"`
	Summary      string       `json:"summary"`
	CreatedAt    time.Time    `json:"created_at"`
}
