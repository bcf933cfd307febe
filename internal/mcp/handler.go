package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/schedule"
	"github.com/rpggio/guidequeue/internal/domain/session"
)

// Method names served by Handler.
const (
	MethodGetState          = "get_state"
	MethodListRoster        = "list_roster"
	MethodCheckInCandidates = "checkin_candidates"
	MethodAssignCandidates  = "assign_candidates"
	MethodCheckIn           = "check_in"
	MethodTurun             = "turun"
	MethodSetTag            = "set_tag"
	MethodResetQueue        = "reset_queue"
	MethodAssignToSlot      = "assign_to_slot"
	MethodCompleteSlot      = "complete_slot"
	MethodRemoveFromQueue   = "remove_from_queue"
	MethodMoveToNextSession = "move_to_next_session"
	MethodSwitchSession     = "switch_session"
	MethodRecentActivity    = "recent_activity"
)

var privileged = map[string]bool{
	MethodTurun:             true,
	MethodSetTag:            true,
	MethodResetQueue:        true,
	MethodAssignToSlot:      true,
	MethodCompleteSlot:      true,
	MethodRemoveFromQueue:   true,
	MethodMoveToNextSession: true,
}

// Privileged reports whether method is reserved for the admin.
func Privileged(method string) bool {
	return privileged[method]
}

// ScheduleService defines the coordinator operations needed by MCP.
type ScheduleService interface {
	State() schedule.State
	Roster() []guide.Guide
	CheckInCandidates(search string) []guide.Guide
	AssignCandidates(slotID int, search string) []guide.Guide
	CheckIn(ctx context.Context, guideID int) error
	Turun(ctx context.Context, guideID int) error
	SetTag(ctx context.Context, guideID int, tag *string) error
	Reset(ctx context.Context) error
	AssignToSlot(ctx context.Context, slotID, guideID int) error
	CompleteSlot(ctx context.Context, slotID int) error
	CompleteSlotGuide(ctx context.Context, slotID, guideID int) error
	RemoveFromQueue(ctx context.Context, guideID int) error
	MoveToNextSession(ctx context.Context, guideID int) error
	SwitchSession(ctx context.Context, id session.ID) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Recent(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	schedule ScheduleService
	activity ActivityService
	validate *validator.Validate
}

// NewHandler creates a new MCP handler.
func NewHandler(scheduleSvc ScheduleService, activitySvc ActivityService) *Handler {
	return &Handler{
		schedule: scheduleSvc,
		activity: activitySvc,
		validate: validator.New(),
	}
}

// Handle dispatches a request to the domain services. Privileged methods
// require IsAdmin(ctx). Commands return the refreshed state.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	if Privileged(method) && !IsAdmin(ctx) {
		return nil, mapError(ErrUnauthorized)
	}

	switch method {
	case MethodGetState:
		return h.state(), nil
	case MethodListRoster:
		return GuidesResponse{Guides: h.schedule.Roster()}, nil
	case MethodCheckInCandidates:
		var req SearchParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return GuidesResponse{Guides: h.schedule.CheckInCandidates(req.Search)}, nil
	case MethodAssignCandidates:
		var req AssignCandidatesParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return GuidesResponse{Guides: h.schedule.AssignCandidates(req.SlotID, req.Search)}, nil
	case MethodCheckIn:
		var req GuideParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.command(h.schedule.CheckIn(ctx, req.GuideID))
	case MethodTurun:
		var req GuideParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.command(h.schedule.Turun(ctx, req.GuideID))
	case MethodSetTag:
		var req SetTagParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.command(h.schedule.SetTag(ctx, req.GuideID, req.Tag))
	case MethodResetQueue:
		return h.command(h.schedule.Reset(ctx))
	case MethodAssignToSlot:
		var req AssignToSlotParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.command(h.schedule.AssignToSlot(ctx, req.SlotID, req.GuideID))
	case MethodCompleteSlot:
		var req CompleteSlotParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.GuideID != nil {
			return h.command(h.schedule.CompleteSlotGuide(ctx, req.SlotID, *req.GuideID))
		}
		return h.command(h.schedule.CompleteSlot(ctx, req.SlotID))
	case MethodRemoveFromQueue:
		var req GuideParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.command(h.schedule.RemoveFromQueue(ctx, req.GuideID))
	case MethodMoveToNextSession:
		var req GuideParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.command(h.schedule.MoveToNextSession(ctx, req.GuideID))
	case MethodSwitchSession:
		var req SwitchSessionParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		id, err := session.Parse(req.Session)
		if err != nil {
			return nil, mapError(err)
		}
		return h.command(h.schedule.SwitchSession(ctx, id))
	case MethodRecentActivity:
		var req RecentActivityParams
		if err := h.decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.activity.Recent(ctx, activity.ListActivityOptions{
			Session: req.Session,
			Limit:   req.Limit,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return ActivityResponse{Entries: entries}, nil
	default:
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func (h *Handler) command(err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return h.state(), nil
}

func (h *Handler) state() StateResponse {
	st := h.schedule.State()
	resp := StateResponse{State: st}
	if next, ok := st.Session.Next(); ok {
		resp.NextSession = string(next)
	}
	return resp
}

func (h *Handler) decodeParams(params json.RawMessage, out any) error {
	if len(params) > 0 && string(params) != "null" {
		if err := json.Unmarshal(params, out); err != nil {
			return mapError(fmt.Errorf("%w: %v", ErrInvalidParams, err))
		}
	}
	if err := h.validate.Struct(out); err != nil {
		return mapError(fmt.Errorf("%w: %v", ErrInvalidParams, err))
	}
	return nil
}
