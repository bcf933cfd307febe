package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes every Handler method as a tool with a typed input.
func registerTools(server *sdkmcp.Server, h *Handler) {
	// Reads
	addTool[EmptyParams](server, h, MethodGetState,
		"Return the active session with its queue, slots, busy ids and present ids")
	addTool[EmptyParams](server, h, MethodListRoster,
		"List every guide in the roster ordered by id")
	addTool[SearchParams](server, h, MethodCheckInCandidates,
		"List roster guides who have not checked in anywhere today")
	addTool[AssignCandidatesParams](server, h, MethodAssignCandidates,
		"List queued guides, in queue order, who can join the given slot")
	addTool[RecentActivityParams](server, h, MethodRecentActivity,
		"List today's applied commands, newest first")

	// Queue
	addTool[GuideParams](server, h, MethodCheckIn,
		"Check a guide in at the tail of the active queue. Ignored when the guide is already present in any session")
	addTool[GuideParams](server, h, MethodTurun,
		"Admin: move a queued guide to the tail of the queue keeping their check-in time")
	addTool[SetTagParams](server, h, MethodSetTag,
		"Admin: set or clear the tag of a queued guide")
	addTool[GuideParams](server, h, MethodRemoveFromQueue,
		"Admin: remove a guide from the active queue")
	addTool[EmptyParams](server, h, MethodResetQueue,
		"Admin: empty the active queue. Slots and other sessions are kept")
	addTool[GuideParams](server, h, MethodMoveToNextSession,
		"Admin: move a queued guide to the tail of the next session's queue")

	// Slots
	addTool[AssignToSlotParams](server, h, MethodAssignToSlot,
		"Admin: move a queued guide into a slot of the active session")
	addTool[CompleteSlotParams](server, h, MethodCompleteSlot,
		"Admin: finish a slot, returning its guides (or one guide) to the tail of the queue")

	// Sessions
	addTool[SwitchSessionParams](server, h, MethodSwitchSession,
		"Make PAGI, SIANG or SORE the active session")
}

func addTool[In any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		params, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding %s arguments: %w", name, err)
		}
		out, err := h.Handle(ctx, name, params)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}
