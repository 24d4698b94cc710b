package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/lock"
	"github.com/m04kA/SMC-PoolScheduleService/internal/testfixtures"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

type failingLocker struct{}

func (failingLocker) Acquire(context.Context, string) (func(), error) {
	return nil, fmt.Errorf("%w: connection refused", lock.ErrLockBackend)
}

type fixture struct {
	store    *testfixtures.Store
	recorder *testfixtures.Recorder
	locker   Locker
	uc       *UseCase
}

func newFixture(t *testing.T, locker Locker) *fixture {
	t.Helper()
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}

	_, err := store.Schedules().Save(context.Background(), planConfig())
	require.NoError(t, err)

	uc := NewUseCase(
		store.Schedules(),
		store.Slots(),
		store.TxManager(),
		locker,
		recorder,
		metrics.New("test", prometheus.NewRegistry()),
		logger.NewNop(),
		366,
	)
	return &fixture{store: store, recorder: recorder, locker: locker, uc: uc}
}

// week is Monday 2025-03-10 through Sunday 2025-03-16, Friday is the day off.
func weekRequest() *Request {
	return &Request{FacilityID: 1, StartDate: day("2025-03-10"), EndDate: day("2025-03-16"), ActorID: 99}
}

func slotsOn(store *testfixtures.Store, date string) []*domain.Slot {
	var out []*domain.Slot
	for _, s := range store.AllSlots() {
		if s.Date.Equal(day(date)) {
			out = append(out, s)
		}
	}
	return out
}

func book(t *testing.T, store *testfixtures.Store, date, at string, appointmentID int64) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Slots().TryBook(ctx, domain.SlotKey{FacilityID: 1, Date: day(date), Time: types.TimeString(at)})
	require.NoError(t, err)
	require.NoError(t, store.Slots().AttachAppointment(ctx, s.ID, appointmentID))
}

func TestExecute_GeneratesWeekSkippingDayOff(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.uc.Execute(context.Background(), weekRequest())
	require.NoError(t, err)

	assert.Equal(t, 18, resp.CreatedCount)
	assert.Equal(t, 0, resp.DeletedCount)
	assert.Empty(t, slotsOn(f.store, "2025-03-14"))
	assert.Len(t, slotsOn(f.store, "2025-03-13"), 3)
	assert.Equal(t, []string{domain.ActionSlotsGenerated}, f.recorder.Actions())
	assert.Equal(t, int64(99), f.recorder.Events()[0].ActorID)
}

func TestExecute_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)
	before := f.store.AllSlots()

	resp, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CreatedCount)
	assert.Equal(t, 0, resp.DeletedCount)
	assert.Equal(t, before, f.store.AllSlots())
}

func TestExecute_SpecialDateOverrides(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)

	require.NoError(t, f.store.Schedules().AddSpecialDate(ctx, 1,
		domain.SpecialDate{Date: day("2025-03-14"), Reason: "open day", IsClosed: false}))
	require.NoError(t, f.store.Schedules().AddSpecialDate(ctx, 1,
		domain.SpecialDate{Date: day("2025-03-10"), Reason: "maintenance", IsClosed: true}))

	resp, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, resp.CreatedCount)
	assert.Equal(t, 3, resp.DeletedCount)
	assert.Len(t, slotsOn(f.store, "2025-03-14"), 3)
	assert.Empty(t, slotsOn(f.store, "2025-03-10"))
}

func TestExecute_KeepsBookedSlots(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)
	book(t, f.store, "2025-03-11", "10:00", 500)

	cfg, err := f.store.Schedules().Get(ctx, 1)
	require.NoError(t, err)
	cfg.TimeSlotTemplate[1].IsActive = false
	_, err = f.store.Schedules().Save(ctx, cfg)
	require.NoError(t, err)

	resp, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CreatedCount)
	assert.Equal(t, 5, resp.DeletedCount)
	require.Len(t, resp.PreservedBooked, 1)
	assert.Equal(t, day("2025-03-11"), resp.PreservedBooked[0].Date)
	assert.Equal(t, int64(500), *resp.PreservedBooked[0].AppointmentID)

	tuesday := slotsOn(f.store, "2025-03-11")
	require.Len(t, tuesday, 3)
	assert.True(t, tuesday[1].IsBooked)
	assert.Equal(t, "10:00", tuesday[1].Time.String())
}

func TestExecute_ClosingDayKeepsBookedSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)
	book(t, f.store, "2025-03-12", "10:00", 501)

	require.NoError(t, f.store.Schedules().AddSpecialDate(ctx, 1,
		domain.SpecialDate{Date: day("2025-03-12"), Reason: "pool cleaning", IsClosed: true}))

	resp, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.DeletedCount)
	remaining := slotsOn(f.store, "2025-03-12")
	require.Len(t, remaining, 1)
	assert.True(t, remaining[0].IsBooked)
	assert.Len(t, resp.PreservedBooked, 1)
}

func TestExecute_InvalidRangeMutatesNothing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		FacilityID: 1, StartDate: day("2025-03-16"), EndDate: day("2025-03-10"),
	})

	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, f.store.AllSlots())
	assert.Empty(t, f.recorder.Events())
}

func TestExecute_RangeLimit(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		FacilityID: 1, StartDate: day("2025-01-01"), EndDate: day("2026-01-02"),
	})

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestExecute_ConfigurationMissing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		FacilityID: 2, StartDate: day("2025-03-10"), EndDate: day("2025-03-16"),
	})

	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestExecute_GenerationInProgress(t *testing.T) {
	f := newFixture(t, nil)

	release, err := f.locker.Acquire(context.Background(), "1")
	require.NoError(t, err)
	defer release()

	_, err = f.uc.Execute(context.Background(), weekRequest())
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.Empty(t, f.store.AllSlots())
}

func TestExecute_LockBackendDownStillGenerates(t *testing.T) {
	f := newFixture(t, failingLocker{})

	resp, err := f.uc.Execute(context.Background(), weekRequest())
	require.NoError(t, err)
	assert.Equal(t, 18, resp.CreatedCount)
}

func TestExecute_RollbackOnFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, weekRequest())
	require.NoError(t, err)

	require.NoError(t, f.store.Schedules().AddSpecialDate(ctx, 1,
		domain.SpecialDate{Date: day("2025-03-14"), IsClosed: false}))
	require.NoError(t, f.store.Schedules().AddSpecialDate(ctx, 1,
		domain.SpecialDate{Date: day("2025-03-10"), IsClosed: true}))

	f.store.FailOn("Slots.DeleteUnbooked", errors.New("connection reset"))

	_, err = f.uc.Execute(ctx, weekRequest())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, slotsOn(f.store, "2025-03-14"))
	assert.Len(t, slotsOn(f.store, "2025-03-10"), 3)
}

func TestExecute_ReleasesLock(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), weekRequest())
	require.NoError(t, err)

	release, err := f.locker.Acquire(context.Background(), "1")
	require.NoError(t, err)
	release()
}
