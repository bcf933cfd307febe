package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `guidequeue runs the daily guide roster of a tourist site: first-come-first-served queues and capacity-bounded tour slots for three sessions (PAGI, SIANG, SORE).

Core concepts:
- Roster: fixed guides with an id, a name and spoken languages.
- Session: the active time block. Every command applies to it; switch_session changes it.
- Queue: guides waiting in check-in order. A guide is queued in at most one place.
- Slot: a departure time label with a capacity. Guides in a slot are busy.
- Present: queued or slotted anywhere today. A present guide cannot check in again.

Workflow:
1) get_state to see the active session.
2) checkin_candidates then check_in as guides arrive.
3) assign_candidates then assign_to_slot when a group departs.
4) complete_slot when the group returns; the guides rejoin the queue at the tail.

Commands that break their rules are ignored and return the unchanged state. Admin tools need the admin bearer token over HTTP.

Docs:
- guidequeue://docs/rules
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "guidequeue://docs/rules",
		Name:        "docs_rules",
		Title:       "Queue and slot rules",
		Description: "Exact rules behind every command, including when a command is ignored.",
		Content: `# Queue and slot rules

## Check-in
- Ignored when the guide is present in any session.
- The guide joins the tail of the active queue with the current time.

## Turun
- Moves a queued guide to the tail. Their check-in time and tag stay.

## Tags
- Free text on a queued entry. An empty tag clears it.

## Assign to slot
- The guide must be queued in the active session and not busy anywhere.
- The slot must exist, have room and not already hold the guide.
- The guide leaves the queue and joins the slot in one step.

## Complete slot
- Without guide_id every guide of the slot returns, in slot order.
- With guide_id only that guide returns.
- Returning guides get a fresh check-in time and no tag.

## Move to next session
- PAGI moves to SIANG, SIANG to SORE. Ignored in SORE.
- Ignored when the guide already waits in the next session.

## Reset
- reset_queue empties the active queue only.
- A scheduled daily reset empties every queue and slot and clears the activity log.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
