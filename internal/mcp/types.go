package mcp

import (
	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/schedule"
)

type EmptyParams struct{}

type GuideParams struct {
	GuideID int `json:"guide_id" jsonschema:"roster id of the guide" validate:"min=1"`
}

type SetTagParams struct {
	GuideID int     `json:"guide_id" jsonschema:"roster id of a queued guide" validate:"min=1"`
	Tag     *string `json:"tag,omitempty" jsonschema:"tag text; omit or leave empty to clear" validate:"omitempty,max=64"`
}

type SearchParams struct {
	Search string `json:"search,omitempty" jsonschema:"case-insensitive match on name or language code" validate:"max=100"`
}

type AssignCandidatesParams struct {
	SlotID int    `json:"slot_id" jsonschema:"slot id within the active session" validate:"min=1"`
	Search string `json:"search,omitempty" jsonschema:"case-insensitive match on name or language code" validate:"max=100"`
}

type AssignToSlotParams struct {
	SlotID  int `json:"slot_id" jsonschema:"slot id within the active session" validate:"min=1"`
	GuideID int `json:"guide_id" jsonschema:"roster id of a queued guide" validate:"min=1"`
}

type CompleteSlotParams struct {
	SlotID  int  `json:"slot_id" jsonschema:"slot id within the active session" validate:"min=1"`
	GuideID *int `json:"guide_id,omitempty" jsonschema:"complete only this guide; omit to complete the whole slot" validate:"omitempty,min=1"`
}

type SwitchSessionParams struct {
	Session string `json:"session" jsonschema:"PAGI, SIANG or SORE" validate:"required"`
}

type RecentActivityParams struct {
	Session string `json:"session,omitempty" jsonschema:"only entries recorded in this session"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum entries, default 50, at most 200" validate:"min=0,max=200"`
}

// StateResponse is the active session view returned by reads and commands.
type StateResponse struct {
	schedule.State
	NextSession string `json:"nextSession,omitempty"`
}

type GuidesResponse struct {
	Guides []guide.Guide `json:"guides"`
}

type ActivityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}
