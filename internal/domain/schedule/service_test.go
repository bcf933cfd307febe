package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/guidequeue/internal/clock"
	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/domain/slot"
	"github.com/rpggio/guidequeue/internal/memstore"
	"github.com/rpggio/guidequeue/internal/repository"
	"github.com/rpggio/guidequeue/internal/store"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	store    *store.Store
	kv       *memstore.KV
	activity *activity.Service
	clock    *clock.Fake
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	roster, err := guide.NewDirectory(guide.DefaultRoster(guide.DefaultRosterSize))
	require.NoError(t, err)

	kv := memstore.NewKV()
	st := store.New(kv, store.Options{Capacity: capacity})
	act := activity.NewService(memstore.NewActivityRepository(), nil)
	clk := clock.NewFake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	svc := NewService(roster, st, act, Options{Clock: clk})
	svc.Load(context.Background())
	return &fixture{svc: svc, store: st, kv: kv, activity: act, clock: clk}
}

func queueIDs(entries []queue.Entry) []int {
	ids := []int{}
	for _, e := range entries {
		ids = append(ids, e.Guide.ID)
	}
	return ids
}

func slotIDs(s slot.Slot) []int {
	ids := []int{}
	for _, g := range s.Guides {
		ids = append(ids, g.ID)
	}
	return ids
}

func guideIDs(guides []guide.Guide) []int {
	ids := []int{}
	for _, g := range guides {
		ids = append(ids, g.ID)
	}
	return ids
}

func (f *fixture) checkIn(t *testing.T, ids ...int) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.svc.CheckIn(context.Background(), id))
		f.clock.Advance(time.Second)
	}
}

func TestService_CheckInIsUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)

	require.NoError(t, f.svc.CheckIn(ctx, 7))
	require.Equal(t, []int{7}, queueIDs(f.svc.Queue()))
	require.Contains(t, f.svc.PresentIDs(), 7)

	entry := f.svc.Queue()[0]
	require.NotNil(t, entry.Guide.CheckInTime)
	require.Equal(t, f.clock.Now().UnixMilli(), *entry.Guide.CheckInTime)
	require.Equal(t, queue.StatusActive, entry.Status)

	require.NoError(t, f.svc.CheckIn(ctx, 7))
	require.Equal(t, []int{7}, queueIDs(f.svc.Queue()))

	// persisted
	require.Equal(t, []int{7}, queueIDs(f.store.LoadQueue(ctx, session.Pagi)))
}

func TestService_CheckInUnknownGuideIsIgnored(t *testing.T) {
	f := newFixture(t, slot.DefaultCapacity)
	require.NoError(t, f.svc.CheckIn(context.Background(), 999))
	require.Empty(t, f.svc.Queue())
}

func TestService_TurunKeepsTimestamps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 3, 5, 9)
	before := f.svc.Queue()

	require.NoError(t, f.svc.Turun(ctx, 5))
	after := f.svc.Queue()
	require.Equal(t, []int{3, 9, 5}, queueIDs(after))
	require.Equal(t, before[0].Guide.CheckInTime, after[0].Guide.CheckInTime)
	require.Equal(t, before[2].Guide.CheckInTime, after[1].Guide.CheckInTime)

	require.NoError(t, f.svc.Turun(ctx, 42))
	require.Equal(t, []int{3, 9, 5}, queueIDs(f.svc.Queue()))
}

func TestService_AssignRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.checkIn(t, 1, 2, 3)

	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 1))
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 2))

	first := f.svc.Slots()[0]
	require.Equal(t, []int{1, 2}, slotIDs(first))
	require.Equal(t, []int{3}, queueIDs(f.svc.Queue()))
	require.Equal(t, []int{1, 2}, f.svc.BusyIDs())

	before := f.svc.Slots()
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 3))
	require.Equal(t, before, f.svc.Slots())
	require.Equal(t, []int{3}, queueIDs(f.svc.Queue()))
}

func TestService_AssignRequiresQueuedGuide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)

	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 10))
	require.Empty(t, f.svc.Slots()[0].Guides)

	f.checkIn(t, 10)
	require.NoError(t, f.svc.AssignToSlot(ctx, 99, 10))
	require.Equal(t, []int{10}, queueIDs(f.svc.Queue()))
}

func TestService_AssignedGuideIsRosterCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 4)
	tag := "VIP"
	require.NoError(t, f.svc.SetTag(ctx, 4, &tag))
	require.NoError(t, f.svc.AssignToSlot(ctx, 2, 4))

	assigned := f.svc.Slots()[1].Guides[0]
	require.Nil(t, assigned.CheckInTime)
	require.Nil(t, assigned.Tag)
}

func TestService_CompleteSlotRequeuesInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.checkIn(t, 1, 2, 8)
	require.NoError(t, f.svc.AssignToSlot(ctx, 3, 1))
	require.NoError(t, f.svc.AssignToSlot(ctx, 3, 2))
	f.clock.Advance(time.Hour)

	require.NoError(t, f.svc.CompleteSlot(ctx, 3))

	require.Empty(t, f.svc.Slots()[2].Guides)
	q := f.svc.Queue()
	require.Equal(t, []int{8, 1, 2}, queueIDs(q))
	now := f.clock.Now().UnixMilli()
	require.Equal(t, now, *q[1].Guide.CheckInTime)
	require.Equal(t, now, *q[2].Guide.CheckInTime)
	require.Empty(t, f.svc.BusyIDs())
	require.Subset(t, f.svc.PresentIDs(), []int{1, 2})
}

func TestService_CompleteSlotGuide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 1, 2)
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 1))
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 2))

	require.NoError(t, f.svc.CompleteSlotGuide(ctx, 1, 1))
	require.Equal(t, []int{2}, slotIDs(f.svc.Slots()[0]))
	require.Equal(t, []int{1}, queueIDs(f.svc.Queue()))
	require.Equal(t, []int{2}, f.svc.BusyIDs())

	require.NoError(t, f.svc.CompleteSlotGuide(ctx, 1, 1))
	require.Equal(t, []int{1}, queueIDs(f.svc.Queue()))
}

func TestService_PresentGateAcrossSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 4)

	require.NoError(t, f.svc.SwitchSession(ctx, session.Siang))
	require.Equal(t, session.Siang, f.svc.ActiveSession())
	require.Empty(t, f.svc.Queue())

	require.NoError(t, f.svc.CheckIn(ctx, 4))
	require.Empty(t, f.svc.Queue())
	require.Contains(t, f.svc.PresentIDs(), 4)

	var ids []int
	for _, g := range f.svc.CheckInCandidates("") {
		ids = append(ids, g.ID)
	}
	require.NotContains(t, ids, 4)
	require.Len(t, ids, guide.DefaultRosterSize-1)
}

func TestService_BusyGuideCannotBeAssignedElsewhere(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 6)
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 6))

	// stale duplicate written by another writer
	require.NoError(t, f.store.SaveQueue(ctx, session.Siang, []queue.Entry{
		{Guide: guide.Guide{ID: 6, Name: "Guide 06", Languages: []string{"ID"}}, Status: queue.StatusActive},
	}))
	require.NoError(t, f.svc.SwitchSession(ctx, session.Siang))
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 6))
	require.Empty(t, f.svc.Slots()[0].Guides)
	require.Empty(t, f.svc.AssignCandidates(1, ""))
}

func TestService_AssignCandidatesNeedsOpenSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.checkIn(t, 1, 2)

	require.Equal(t, []int{1, 2}, guideIDs(f.svc.AssignCandidates(1, "")))
	require.Empty(t, f.svc.AssignCandidates(99, ""))

	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 1))
	require.Empty(t, f.svc.AssignCandidates(1, ""))
	require.Equal(t, []int{2}, guideIDs(f.svc.AssignCandidates(2, "")))
}

func TestService_MoveToNextSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 11, 12)

	require.NoError(t, f.svc.MoveToNextSession(ctx, 11))
	require.Equal(t, []int{12}, queueIDs(f.svc.Queue()))
	require.Equal(t, []int{11}, queueIDs(f.store.LoadQueue(ctx, session.Siang)))
	require.Contains(t, f.svc.PresentIDs(), 11)

	// already waiting in the next session
	require.NoError(t, f.store.SaveQueue(ctx, session.Siang, append(
		f.store.LoadQueue(ctx, session.Siang), f.svc.Queue()...)))
	require.NoError(t, f.svc.MoveToNextSession(ctx, 12))
	require.Equal(t, []int{12}, queueIDs(f.svc.Queue()))
	require.Equal(t, []int{11, 12}, queueIDs(f.store.LoadQueue(ctx, session.Siang)))
}

func TestService_MoveToNextSessionFromLastIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	require.NoError(t, f.svc.SwitchSession(ctx, session.Sore))
	f.checkIn(t, 20)

	require.NoError(t, f.svc.MoveToNextSession(ctx, 20))
	require.Equal(t, []int{20}, queueIDs(f.svc.Queue()))
}

func TestService_SetTagAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 2, 3)

	tag := "rombongan Jepang"
	require.NoError(t, f.svc.SetTag(ctx, 3, &tag))
	require.Equal(t, "rombongan Jepang", f.svc.Queue()[1].Guide.TagValue())

	require.NoError(t, f.svc.SetTag(ctx, 3, nil))
	require.Nil(t, f.svc.Queue()[1].Guide.Tag)

	require.NoError(t, f.svc.RemoveFromQueue(ctx, 2))
	require.Equal(t, []int{3}, queueIDs(f.svc.Queue()))
	require.NotContains(t, f.svc.PresentIDs(), 2)
}

func TestService_RemovedGuideMayCheckInAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 7, 8)

	require.NoError(t, f.svc.RemoveFromQueue(ctx, 7))
	require.Equal(t, []int{8}, f.svc.PresentIDs())
	require.Contains(t, guideIDs(f.svc.CheckInCandidates("")), 7)

	require.NoError(t, f.svc.CheckIn(ctx, 7))
	require.Equal(t, []int{8, 7}, queueIDs(f.svc.Queue()))
	require.Equal(t, []int{7, 8}, f.svc.PresentIDs())
}

func TestService_RemoveKeepsGuideHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 4)
	require.NoError(t, f.svc.AssignToSlot(ctx, 2, 4))

	// stale queue copy beside the slot assignment
	require.NoError(t, f.store.SaveQueue(ctx, session.Pagi, []queue.Entry{
		{Guide: guide.Guide{ID: 4, Name: "Guide 04", Languages: []string{"ID"}}, Status: queue.StatusActive},
	}))
	f.svc.Load(ctx)
	require.NoError(t, f.svc.RemoveFromQueue(ctx, 4))

	require.Empty(t, f.svc.Queue())
	require.Equal(t, []int{4}, f.svc.PresentIDs())
	require.NoError(t, f.svc.CheckIn(ctx, 4))
	require.Empty(t, f.svc.Queue())
}

func TestService_ResetTouchesOnlyActiveQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 1, 2)
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 1))
	require.NoError(t, f.svc.MoveToNextSession(ctx, 2))
	f.checkIn(t, 3)

	require.NoError(t, f.svc.Reset(ctx))
	require.Empty(t, f.svc.Queue())
	require.Equal(t, []int{1}, slotIDs(f.svc.Slots()[0]))
	require.Equal(t, []int{2}, queueIDs(f.store.LoadQueue(ctx, session.Siang)))
}

func TestService_ResetDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 1, 2)
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 1))
	require.NoError(t, f.svc.MoveToNextSession(ctx, 2))

	require.NoError(t, f.svc.ResetDay(ctx))
	require.Empty(t, f.svc.Queue())
	require.Empty(t, f.svc.PresentIDs())
	require.Equal(t, f.store.DefaultSlots(session.Pagi), f.svc.Slots())

	recent, err := f.activity.Recent(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, activity.TypeDayReset, recent[0].ActivityType)
}

func TestService_SwitchSessionRejectsUnknown(t *testing.T) {
	f := newFixture(t, slot.DefaultCapacity)
	err := f.svc.SwitchSession(context.Background(), session.ID("MALAM"))
	require.ErrorIs(t, err, session.ErrInvalidSession)
	require.Equal(t, session.Pagi, f.svc.ActiveSession())
}

func TestService_LoadRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	require.NoError(t, f.svc.SwitchSession(ctx, session.Siang))
	f.checkIn(t, 30, 31)
	require.NoError(t, f.svc.AssignToSlot(ctx, 2, 31))

	roster, err := guide.NewDirectory(guide.DefaultRoster(guide.DefaultRosterSize))
	require.NoError(t, err)
	reloaded := NewService(roster, f.store, nil, Options{Clock: f.clock})
	reloaded.Load(ctx)

	require.Equal(t, f.svc.State(), reloaded.State())
}

func TestService_RecordsActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, slot.DefaultCapacity)
	f.checkIn(t, 7)
	require.NoError(t, f.svc.AssignToSlot(ctx, 1, 7))
	require.NoError(t, f.svc.CheckIn(ctx, 7))

	recent, err := f.activity.Recent(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, activity.TypeAssigned, recent[0].ActivityType)
	require.Equal(t, "Guide 07 assigned to 08:30", recent[0].Summary)
	require.Equal(t, activity.TypeCheckIn, recent[1].ActivityType)
	require.Equal(t, "PAGI", recent[1].Session)
}

type failingKV struct {
	*memstore.KV
	fail bool
}

func (f *failingKV) Put(ctx context.Context, key, value string) error {
	if f.fail {
		return repository.ErrUnavailable
	}
	return f.KV.Put(ctx, key, value)
}

func (f *failingKV) PutMany(ctx context.Context, values map[string]string) error {
	if f.fail {
		return repository.ErrUnavailable
	}
	return f.KV.PutMany(ctx, values)
}

func TestService_WriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	roster, err := guide.NewDirectory(guide.DefaultRoster(10))
	require.NoError(t, err)
	kv := &failingKV{KV: memstore.NewKV()}
	st := store.New(kv, store.Options{})
	svc := NewService(roster, st, nil, Options{})
	svc.Load(ctx)

	require.NoError(t, svc.CheckIn(ctx, 1))
	kv.fail = true

	err = svc.AssignToSlot(ctx, 1, 1)
	require.ErrorIs(t, err, ErrPersistence)
	require.True(t, errors.Is(err, repository.ErrUnavailable))
	require.Equal(t, []int{1}, queueIDs(svc.Queue()))
	require.Empty(t, svc.Slots()[0].Guides)

	err = svc.CheckIn(ctx, 2)
	require.ErrorIs(t, err, ErrPersistence)
	require.Equal(t, []int{1}, queueIDs(svc.Queue()))
}
