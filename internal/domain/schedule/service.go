// Package schedule coordinates the active session's queue and slot board.
// Commands run one at a time. A command whose preconditions fail changes
// nothing and returns nil; only a failed write returns an error.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rpggio/guidequeue/internal/clock"
	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/attendance"
	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
	"github.com/rpggio/guidequeue/internal/store"
)

// Options configures a Service.
type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

// Service owns the active session state.
type Service struct {
	mu         sync.Mutex
	roster     *guide.Directory
	store      Store
	aggregator *attendance.Aggregator
	activity   Recorder
	clock      clock.Clock
	logger     *slog.Logger

	active   session.ID
	queue    *queue.Queue
	board    *slot.Board
	snapshot attendance.Snapshot
}

// NewService creates a Service. Call Load before serving commands.
// recorder may be nil.
func NewService(roster *guide.Directory, st Store, recorder Recorder, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		roster:     roster,
		store:      st,
		aggregator: attendance.NewAggregator(st),
		activity:   recorder,
		clock:      opts.Clock,
		logger:     opts.Logger,
		active:     session.DefaultID,
		queue:      queue.New(nil),
		board:      slot.BoardFrom(nil),
	}
}

// Load reads the active session and its state from the store.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSession(ctx, s.store.LoadActive(ctx))
	s.logger.Info("session state loaded",
		"session", s.active,
		"queued", s.queue.Len(),
		"present", len(s.snapshot.PresentIDs()),
	)
}

func (s *Service) loadSession(ctx context.Context, id session.ID) {
	s.active = id
	s.queue = queue.New(s.store.LoadQueue(ctx, id))
	s.board = slot.BoardFrom(s.store.LoadSlots(ctx, id))
	s.snapshot = s.aggregator.Compute(ctx)
}

// ActiveSession returns the session commands apply to.
func (s *Service) ActiveSession() session.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Queue returns the active queue in order.
func (s *Service) Queue() []queue.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Entries()
}

// Roster returns every guide ordered by id.
func (s *Service) Roster() []guide.Guide {
	return s.roster.All()
}

// Slots returns the active slot board.
func (s *Service) Slots() []slot.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Slots()
}

// BusyIDs returns guides assigned to a slot in any session.
func (s *Service) BusyIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.BusyIDs()
}

// PresentIDs returns guides queued or assigned in any session.
func (s *Service) PresentIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.PresentIDs()
}

// State returns a consistent view of the active session.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Session:    s.active,
		Queue:      s.queue.Entries(),
		Slots:      s.board.Slots(),
		BusyIDs:    s.snapshot.BusyIDs(),
		PresentIDs: s.snapshot.PresentIDs(),
	}
}

// CheckInCandidates lists roster guides not present anywhere that match
// search.
func (s *Service) CheckInCandidates(search string) []guide.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []guide.Guide{}
	for _, g := range s.roster.All() {
		if s.snapshot.IsPresent(g.ID) || !g.Matches(search) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// AssignCandidates lists queued guides, in queue order, that could join
// the slot and match search. An unknown or full slot has none.
func (s *Service) AssignCandidates(slotID int, search string) []guide.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []guide.Guide{}
	target, ok := s.board.Slot(slotID)
	if !ok || target.Full() {
		return out
	}
	for _, e := range s.queue.Entries() {
		if s.snapshot.IsBusy(e.Guide.ID) {
			continue
		}
		if target.Has(e.Guide.ID) {
			continue
		}
		if !e.Guide.Matches(search) {
			continue
		}
		out = append(out, e.Guide)
	}
	return out
}

// CheckIn appends the guide to the active queue unless they are already
// present in any session.
func (s *Service) CheckIn(ctx context.Context, guideID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.roster.Get(guideID)
	if !ok {
		return s.ignore(activity.TypeCheckIn, guideID, "unknown guide")
	}
	if s.snapshot.IsPresent(guideID) {
		return s.ignore(activity.TypeCheckIn, guideID, "already present")
	}
	cp := s.checkpoint()
	if !s.queue.CheckIn(g, s.now()) {
		return s.ignore(activity.TypeCheckIn, guideID, "already queued")
	}
	return s.commit(ctx, cp, s.store.Batch().PutQueue(s.active, s.queue.Entries()), entry(
		activity.TypeCheckIn, &guideID, nil, "%s checked in", g.Name))
}

// Turun moves the guide to the tail of the active queue.
func (s *Service) Turun(ctx context.Context, guideID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	if !s.queue.Turun(guideID) {
		return s.ignore(activity.TypeTurun, guideID, "not queued")
	}
	return s.commit(ctx, cp, s.store.Batch().PutQueue(s.active, s.queue.Entries()), entry(
		activity.TypeTurun, &guideID, nil, "%s moved to the back", s.name(guideID)))
}

// SetTag sets or clears the tag of a queued guide.
func (s *Service) SetTag(ctx context.Context, guideID int, tag *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	if !s.queue.SetTag(guideID, tag) {
		return s.ignore(activity.TypeTagSet, guideID, "not queued or unchanged")
	}
	summary := s.name(guideID) + " tag cleared"
	if tag != nil && *tag != "" {
		summary = s.name(guideID) + " tagged " + *tag
	}
	return s.commit(ctx, cp, s.store.Batch().PutQueue(s.active, s.queue.Entries()), entry(
		activity.TypeTagSet, &guideID, nil, "%s", summary))
}

// RemoveFromQueue drops the guide from the active queue. A guide held
// nowhere else leaves the present set and may check in again.
func (s *Service) RemoveFromQueue(ctx context.Context, guideID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	if _, ok := s.queue.Remove(guideID); !ok {
		return s.ignore(activity.TypeRemoved, guideID, "not queued")
	}
	return s.commit(ctx, cp, s.store.Batch().PutQueue(s.active, s.queue.Entries()), entry(
		activity.TypeRemoved, &guideID, nil, "%s removed from queue", s.name(guideID)))
}

// Reset empties the active queue. Slots and other sessions are untouched.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	if !s.queue.Reset() {
		return s.ignore(activity.TypeQueueReset, 0, "queue empty")
	}
	return s.commit(ctx, cp, s.store.Batch().PutQueue(s.active, s.queue.Entries()), entry(
		activity.TypeQueueReset, nil, nil, "%s queue reset", s.active))
}

// AssignToSlot moves a queued guide into a slot of the active session.
// Every precondition is checked before anything changes.
func (s *Service) AssignToSlot(ctx context.Context, slotID, guideID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.roster.Get(guideID)
	switch {
	case !ok:
		return s.ignore(activity.TypeAssigned, guideID, "unknown guide")
	case !s.queue.Contains(guideID):
		return s.ignore(activity.TypeAssigned, guideID, "not queued")
	case s.snapshot.IsBusy(guideID):
		return s.ignore(activity.TypeAssigned, guideID, "already assigned")
	case !s.board.CanAssign(slotID, guideID):
		return s.ignore(activity.TypeAssigned, guideID, "slot unavailable")
	}

	cp := s.checkpoint()
	s.queue.Remove(guideID)
	s.board.Assign(slotID, g)
	label := s.label(slotID)
	return s.commit(ctx, cp, s.store.Batch().
		PutQueue(s.active, s.queue.Entries()).
		PutSlots(s.active, s.board.Slots()),
		entry(activity.TypeAssigned, &guideID, &slotID, "%s assigned to %s", g.Name, label))
}

// CompleteSlot returns every guide of the slot to the tail of the active
// queue in slot order.
func (s *Service) CompleteSlot(ctx context.Context, slotID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	released := s.board.ReleaseAll(slotID)
	if len(released) == 0 {
		return s.ignore(activity.TypeSlotCompleted, 0, "slot empty or unknown")
	}
	now := s.now()
	for _, g := range released {
		s.queue.Requeue(s.fresh(g), now)
	}
	label := s.label(slotID)
	return s.commit(ctx, cp, s.store.Batch().
		PutQueue(s.active, s.queue.Entries()).
		PutSlots(s.active, s.board.Slots()),
		entry(activity.TypeSlotCompleted, nil, &slotID, "%s completed, %d back in queue", label, len(released)))
}

// CompleteSlotGuide returns one guide of the slot to the tail of the
// active queue.
func (s *Service) CompleteSlotGuide(ctx context.Context, slotID, guideID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	g, ok := s.board.Release(slotID, guideID)
	if !ok {
		return s.ignore(activity.TypeSlotCompleted, guideID, "not in slot")
	}
	g = s.fresh(g)
	s.queue.Requeue(g, s.now())
	label := s.label(slotID)
	return s.commit(ctx, cp, s.store.Batch().
		PutQueue(s.active, s.queue.Entries()).
		PutSlots(s.active, s.board.Slots()),
		entry(activity.TypeSlotCompleted, &guideID, &slotID, "%s finished %s", g.Name, label))
}

// MoveToNextSession moves a queued guide to the tail of the following
// session's stored queue. It does nothing in the last session.
func (s *Service) MoveToNextSession(ctx context.Context, guideID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.active.Next()
	if !ok {
		return s.ignore(activity.TypeMovedToNext, guideID, "no next session")
	}
	g, ok := s.roster.Get(guideID)
	if !ok {
		return s.ignore(activity.TypeMovedToNext, guideID, "unknown guide")
	}
	if !s.queue.Contains(guideID) {
		return s.ignore(activity.TypeMovedToNext, guideID, "not queued")
	}
	target := queue.New(s.store.LoadQueue(ctx, next))
	if target.Contains(guideID) {
		return s.ignore(activity.TypeMovedToNext, guideID, "already queued in "+next.String())
	}

	cp := s.checkpoint()
	s.queue.Remove(guideID)
	target.CheckIn(g, s.now())
	return s.commit(ctx, cp, s.store.Batch().
		PutQueue(s.active, s.queue.Entries()).
		PutQueue(next, target.Entries()),
		entry(activity.TypeMovedToNext, &guideID, nil, "%s moved to %s", g.Name, next))
}

// SwitchSession makes id the active session and loads its stored state.
func (s *Service) SwitchSession(ctx context.Context, id session.ID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", session.ErrInvalidSession, string(id))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.active {
		return nil
	}
	if err := s.store.Batch().PutActive(id).Commit(ctx); err != nil {
		s.logger.Error("session switch not persisted", "session", id, "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	from := s.active
	s.loadSession(ctx, id)
	s.record(ctx, entry(activity.TypeSessionSwitched, nil, nil, "switched from %s to %s", from, id))
	s.logger.Debug("session switched", "from", from, "to", id)
	return nil
}

// ResetDay empties every session's queue, regenerates every slot board
// and clears the activity log.
func (s *Service) ResetDay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.store.Batch()
	for _, id := range session.All() {
		b.ResetSession(id)
	}
	if err := b.Commit(ctx); err != nil {
		s.logger.Error("day reset not persisted", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.loadSession(ctx, s.active)
	if s.activity != nil {
		if err := s.activity.Clear(ctx); err != nil {
			s.logger.Warn("activity log not cleared", "error", err)
		}
	}
	s.record(ctx, entry(activity.TypeDayReset, nil, nil, "all sessions reset"))
	s.logger.Info("day reset")
	return nil
}

func (s *Service) checkpoint() checkpoint {
	return checkpoint{entries: s.queue.Entries(), slots: s.board.Slots()}
}

// commit writes b and, on success, refreshes attendance and records e.
// On failure the active state is restored from cp.
func (s *Service) commit(ctx context.Context, cp checkpoint, b *store.Batch, e activity.ActivityEntry) error {
	if err := b.Commit(ctx); err != nil {
		s.queue = queue.New(cp.entries)
		s.board = slot.BoardFrom(cp.slots)
		s.logger.Error("command not persisted",
			"type", e.ActivityType,
			"session", s.active,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.snapshot = s.aggregator.Compute(ctx)
	s.record(ctx, e)
	s.logger.Debug("command applied",
		"type", e.ActivityType,
		"session", s.active,
		"summary", e.Summary,
	)
	return nil
}

func (s *Service) record(ctx context.Context, e activity.ActivityEntry) {
	if s.activity == nil {
		return
	}
	e.Session = string(s.active)
	e.CreatedAt = s.clock.Now()
	if err := s.activity.Record(ctx, &e); err != nil {
		s.logger.Warn("activity not recorded", "type", e.ActivityType, "error", err)
	}
}

func (s *Service) ignore(t activity.ActivityType, guideID int, reason string) error {
	s.logger.Debug("command ignored",
		"type", t,
		"session", s.active,
		"guide_id", guideID,
		"reason", reason,
	)
	return nil
}

func (s *Service) now() int64 {
	return clock.EpochMillis(s.clock)
}

// fresh prefers the roster copy of g so queue entries never carry slot
// state.
func (s *Service) fresh(g guide.Guide) guide.Guide {
	if r, ok := s.roster.Get(g.ID); ok {
		return r
	}
	g.CheckInTime = nil
	g.Tag = nil
	return g
}

func (s *Service) name(guideID int) string {
	if g, ok := s.roster.Get(guideID); ok {
		return g.Name
	}
	return fmt.Sprintf("guide %d", guideID)
}

func (s *Service) label(slotID int) string {
	if sl, ok := s.board.Slot(slotID); ok {
		return sl.TimeLabel
	}
	return fmt.Sprintf("slot %d", slotID)
}

func entry(t activity.ActivityType, guideID, slotID *int, format string, args ...any) activity.ActivityEntry {
	return activity.ActivityEntry{
		ActivityType: t,
		GuideID:      guideID,
		SlotID:       slotID,
		Summary:      fmt.Sprintf(format, args...),
	}
}
