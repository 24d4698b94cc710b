package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments/models"
	"github.com/m04kA/SMC-PoolScheduleService/internal/testfixtures"
	"github.com/m04kA/SMC-PoolScheduleService/internal/usecase/book_slot"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

var (
	slotDay = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	client  = domain.Actor{ID: 10, Role: domain.RoleClient}
	other   = domain.Actor{ID: 11, Role: domain.RoleClient}
	admin   = domain.Actor{ID: 1, Role: domain.RoleAdmin}
)

type fixture struct {
	store    *testfixtures.Store
	recorder *testfixtures.Recorder
	booker   *book_slot.UseCase
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	m := metrics.New("test", prometheus.NewRegistry())

	_, err := store.Slots().CreateBatch(context.Background(), []*domain.Slot{
		{FacilityID: 1, Date: slotDay, Time: "10:00"},
		{FacilityID: 1, Date: slotDay, Time: "11:00"},
		{FacilityID: 1, Date: slotDay, Time: "12:00"},
	})
	require.NoError(t, err)

	booker := book_slot.NewUseCase(store.Slots(), store.Appointments(), store.TxManager(), recorder, m, logger.NewNop()).
		WithTimeProvider(testfixtures.NewClock(slotDay.Add(-24 * time.Hour)))
	svc := NewService(store.Appointments(), store.Slots(), store.TxManager(), recorder, m, logger.NewNop())

	return &fixture{store: store, recorder: recorder, booker: booker, svc: svc}
}

func (f *fixture) book(t *testing.T, clientID int64, at string) int64 {
	t.Helper()
	resp, err := f.booker.Execute(context.Background(), &book_slot.Request{
		ActorID: clientID, ClientID: clientID, FacilityID: 1, Date: slotDay, Time: types.TimeString(at), Type: "swim",
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) slot(t *testing.T, at string) *domain.Slot {
	t.Helper()
	s, err := f.store.Slots().GetByKey(context.Background(), domain.SlotKey{FacilityID: 1, Date: slotDay, Time: types.TimeString(at)})
	require.NoError(t, err)
	return s
}

func TestCancel_ThenRebook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.book(t, client.ID, "10:00")

	resp, err := f.svc.Cancel(ctx, id, client)
	require.NoError(t, err)
	assert.True(t, resp.IsCanceled)
	assert.False(t, f.slot(t, "10:00").IsBooked)
	assert.Nil(t, f.slot(t, "10:00").AppointmentID)

	second := f.book(t, other.ID, "10:00")
	assert.NotEqual(t, id, second)
	assert.True(t, f.slot(t, "10:00").IsBooked)
}

func TestCancel_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, client.ID, "10:00")

	_, err := f.svc.Cancel(ctx, 999, client)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.svc.Cancel(ctx, id, other)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.True(t, f.slot(t, "10:00").IsBooked)

	_, err = f.svc.Cancel(ctx, id, admin)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, id, client)
	assert.ErrorIs(t, err, ErrAlreadyCanceled)
}

func TestCancel_StaleCancelDoesNotFreeRebookedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.book(t, client.ID, "10:00")
	_, err := f.svc.Cancel(ctx, first, client)
	require.NoError(t, err)
	second := f.book(t, other.ID, "10:00")

	released, err := f.store.Slots().Release(ctx, domain.SlotKey{FacilityID: 1, Date: slotDay, Time: "10:00"}, first)
	require.NoError(t, err)
	assert.False(t, released)
	assert.Equal(t, second, *f.slot(t, "10:00").AppointmentID)
}

func TestCancel_SlotGone(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, client.ID, "11:00")
	f.store.DeleteSlot(domain.SlotKey{FacilityID: 1, Date: slotDay, Time: "11:00"})

	resp, err := f.svc.Cancel(context.Background(), id, client)
	require.NoError(t, err)
	assert.True(t, resp.IsCanceled)
}

func TestCancel_RollbackOnReleaseFailure(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, client.ID, "10:00")
	f.store.FailOn("Slots.Release", errors.New("lost connection"))

	_, err := f.svc.Cancel(context.Background(), id, client)
	assert.ErrorIs(t, err, ErrInternal)

	a, err := f.store.Appointments().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, a.IsCanceled)
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, client.ID, "10:00")

	_, err := f.svc.Confirm(ctx, id, other)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.Confirm(ctx, id, client)
	require.NoError(t, err)
	assert.True(t, resp.IsConfirmed)

	resp, err = f.svc.Confirm(ctx, id, client)
	require.NoError(t, err)
	assert.True(t, resp.IsConfirmed)

	canceled := f.book(t, client.ID, "11:00")
	_, err = f.svc.Cancel(ctx, canceled, client)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, canceled, client)
	assert.ErrorIs(t, err, ErrCannotConfirm)

	confirmations := 0
	for _, action := range f.recorder.Actions() {
		if action == domain.ActionAppointmentConfirm {
			confirmations++
		}
	}
	assert.Equal(t, 1, confirmations)
}

func TestConfirm_NoShowRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, client.ID, "10:00")

	marked, err := f.svc.MarkNoShow(ctx, slotDay.Add(15*time.Hour), 0)
	require.NoError(t, err)
	require.Equal(t, 1, marked)

	_, err = f.svc.Confirm(ctx, id, client)
	assert.ErrorIs(t, err, ErrCannotConfirm)

	a, err := f.store.Appointments().GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, a.IsNoShow)
	assert.False(t, a.IsConfirmed)
}

func TestMarkNoShow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.book(t, client.ID, "10:00")
	confirmed := f.book(t, client.ID, "11:00")
	canceled := f.book(t, other.ID, "12:00")

	_, err := f.svc.Confirm(ctx, confirmed, client)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, canceled, other)
	require.NoError(t, err)

	marked, err := f.svc.MarkNoShow(ctx, slotDay.Add(15*time.Hour), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	for _, a := range f.store.AllAppointments() {
		assert.Equal(t, a.ID == pending, a.IsNoShow, "appointment %d", a.ID)
	}
	assert.True(t, f.slot(t, "10:00").IsBooked)

	marked, err = f.svc.MarkNoShow(ctx, slotDay, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestGetByIDAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.book(t, client.ID, "11:00")
	f.book(t, other.ID, "10:00")

	got, err := f.svc.GetByID(ctx, first, client)
	require.NoError(t, err)
	assert.Equal(t, "11:00", got.Time)
	assert.Equal(t, "2025-03-11", got.Date)

	_, err = f.svc.GetByID(ctx, first, other)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(ctx, first, admin)
	assert.NoError(t, err)

	list, err := f.svc.List(ctx, &models.ListAppointmentsRequest{Date: "2025-03-11"})
	require.NoError(t, err)
	require.Len(t, list.Appointments, 2)
	assert.Equal(t, "10:00", list.Appointments[0].Time)

	_, err = f.svc.List(ctx, &models.ListAppointmentsRequest{Date: "tomorrow"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
