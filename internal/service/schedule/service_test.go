package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/lock"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule/models"
	"github.com/m04kA/SMC-PoolScheduleService/internal/testfixtures"
	"github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/ptr"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

func newService(store *testfixtures.Store, recorder *testfixtures.Recorder) *Service {
	return NewService(store.Schedules(), store.TxManager(), recorder, logger.NewNop())
}

func saveRequest() *models.SaveScheduleRequest {
	return &models.SaveScheduleRequest{
		FacilityID: 1,
		ActorID:    42,
		DayOff:     "Friday",
		WorkHours:  models.WorkHours{Start: "09:00", End: "12:00"},
		SpecialDates: []models.SpecialDate{
			{Date: "2025-12-31", Reason: "new year", IsClosed: true},
			{Date: "2025-03-14", Reason: "open day", IsClosed: false},
		},
		TimeSlotTemplate: []models.TemplateEntry{
			{Time: "09:00", IsActive: true},
			{Time: "10:00", IsActive: true},
		},
	}
}

func TestService_SaveAndGet(t *testing.T) {
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	svc := newService(store, recorder)
	ctx := context.Background()

	saved, err := svc.Save(ctx, saveRequest())
	require.NoError(t, err)
	assert.Equal(t, "Friday", saved.DayOff)
	assert.Equal(t, "2025-03-14", saved.SpecialDates[0].Date)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), got.WorkHours.Start)
	assert.Len(t, got.TimeSlotTemplate, 2)
	assert.Equal(t, []string{domain.ActionScheduleSaved}, recorder.Actions())
	assert.Equal(t, int64(42), recorder.Events()[0].ActorID)
}

func TestService_SaveValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.SaveScheduleRequest)
	}{
		{name: "start after end", mutate: func(r *models.SaveScheduleRequest) {
			r.WorkHours = models.WorkHours{Start: "18:00", End: "09:00"}
		}},
		{name: "unknown day off", mutate: func(r *models.SaveScheduleRequest) { r.DayOff = "Caturday" }},
		{name: "duplicate special date", mutate: func(r *models.SaveScheduleRequest) {
			r.SpecialDates = append(r.SpecialDates, models.SpecialDate{Date: "2025-12-31"})
		}},
		{name: "malformed special date", mutate: func(r *models.SaveScheduleRequest) {
			r.SpecialDates = []models.SpecialDate{{Date: "31.12.2025"}}
		}},
		{name: "malformed template time", mutate: func(r *models.SaveScheduleRequest) {
			r.TimeSlotTemplate = []models.TemplateEntry{{Time: "9", IsActive: true}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testfixtures.NewStore()
			svc := newService(store, &testfixtures.Recorder{})
			req := saveRequest()
			tt.mutate(req)

			_, err := svc.Save(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)

			_, err = svc.Get(context.Background(), 1)
			assert.ErrorIs(t, err, ErrConfigNotFound)
		})
	}
}

func TestService_Update(t *testing.T) {
	store := testfixtures.NewStore()
	svc := newService(store, &testfixtures.Recorder{})
	ctx := context.Background()

	_, err := svc.Update(ctx, &models.UpdateScheduleRequest{FacilityID: 1, DayOff: ptr.Ptr("Monday")})
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = svc.Save(ctx, saveRequest())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, &models.UpdateScheduleRequest{FacilityID: 1, DayOff: ptr.Ptr("monday")})
	require.NoError(t, err)
	assert.Equal(t, "Monday", updated.DayOff)
	assert.Equal(t, types.TimeString("12:00"), updated.WorkHours.End)
	assert.Len(t, updated.SpecialDates, 2)

	_, err = svc.Update(ctx, &models.UpdateScheduleRequest{
		FacilityID: 1,
		WorkHours:  &models.WorkHours{Start: "13:00", End: "12:00"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), got.WorkHours.Start)
}

func TestService_SpecialDates(t *testing.T) {
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	svc := newService(store, recorder)
	ctx := context.Background()

	add := &models.AddSpecialDateRequest{FacilityID: 1, SpecialDate: models.SpecialDate{Date: "2025-05-01", Reason: "holiday", IsClosed: true}}

	_, err := svc.AddSpecialDate(ctx, add)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = svc.Save(ctx, saveRequest())
	require.NoError(t, err)

	updated, err := svc.AddSpecialDate(ctx, add)
	require.NoError(t, err)
	assert.Len(t, updated.SpecialDates, 3)

	_, err = svc.AddSpecialDate(ctx, add)
	assert.ErrorIs(t, err, ErrDuplicateDate)

	removed, err := svc.RemoveSpecialDate(ctx, &models.RemoveSpecialDateRequest{FacilityID: 1, Date: "2025-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", removed.Date)
	assert.Nil(t, removed.Regeneration)

	_, err = svc.RemoveSpecialDate(ctx, &models.RemoveSpecialDateRequest{FacilityID: 1, Date: "2025-05-01"})
	assert.ErrorIs(t, err, ErrSpecialDateNotFound)

	_, err = svc.RemoveSpecialDate(ctx, &models.RemoveSpecialDateRequest{FacilityID: 1, Date: "May 1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, []string{
		domain.ActionScheduleSaved,
		domain.ActionSpecialDateAdded,
		domain.ActionSpecialDateRemoved,
	}, recorder.Actions())
}

func TestService_AutoRegeneration(t *testing.T) {
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	ctx := context.Background()

	generator := generate_slots.NewUseCase(
		store.Schedules(), store.Slots(), store.TxManager(),
		lock.NewLocalLocker(), recorder, metrics.New("test", prometheus.NewRegistry()), logger.NewNop(), 366,
	)
	// Monday
	clock := testfixtures.NewClock(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC))
	svc := newService(store, recorder).WithAutoRegeneration(generator, 7).WithTimeProvider(clock)

	_, err := svc.Save(ctx, saveRequest())
	require.NoError(t, err)

	// Mon..Sun with Friday 14th forced open by its special date
	assert.Len(t, store.AllSlots(), 14)

	_, err = svc.AddSpecialDate(ctx, &models.AddSpecialDateRequest{
		FacilityID:  1,
		SpecialDate: models.SpecialDate{Date: "2025-03-11", IsClosed: true},
	})
	require.NoError(t, err)
	assert.Len(t, store.AllSlots(), 12)
}

func TestService_ClosingDayReportsPreservedBooking(t *testing.T) {
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	ctx := context.Background()

	generator := generate_slots.NewUseCase(
		store.Schedules(), store.Slots(), store.TxManager(),
		lock.NewLocalLocker(), recorder, metrics.New("test", prometheus.NewRegistry()), logger.NewNop(), 366,
	)
	clock := testfixtures.NewClock(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC))
	svc := newService(store, recorder).WithAutoRegeneration(generator, 7).WithTimeProvider(clock)

	saved, err := svc.Save(ctx, saveRequest())
	require.NoError(t, err)
	require.NotNil(t, saved.Regeneration)
	assert.Equal(t, 14, saved.Regeneration.CreatedCount)
	assert.Equal(t, "2025-03-10", saved.Regeneration.StartDate)
	assert.Equal(t, "2025-03-16", saved.Regeneration.EndDate)
	assert.Empty(t, saved.Regeneration.PreservedBooked)

	tuesday := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	_, err = store.Slots().TryBook(ctx, domain.SlotKey{FacilityID: 1, Date: tuesday, Time: "09:00"})
	require.NoError(t, err)

	closed, err := svc.AddSpecialDate(ctx, &models.AddSpecialDateRequest{
		FacilityID:  1,
		SpecialDate: models.SpecialDate{Date: "2025-03-11", Reason: "maintenance", IsClosed: true},
	})
	require.NoError(t, err)

	// the free 10:00 slot goes, the booked 09:00 one stays and is reported
	require.NotNil(t, closed.Regeneration)
	assert.Equal(t, 0, closed.Regeneration.CreatedCount)
	assert.Equal(t, 1, closed.Regeneration.DeletedCount)
	require.Len(t, closed.Regeneration.PreservedBooked, 1)
	assert.Equal(t, "2025-03-11", closed.Regeneration.PreservedBooked[0].Date)
	assert.Equal(t, "09:00", closed.Regeneration.PreservedBooked[0].Time)
	assert.Len(t, store.AllSlots(), 13)

	reopened, err := svc.RemoveSpecialDate(ctx, &models.RemoveSpecialDateRequest{FacilityID: 1, Date: "2025-03-11"})
	require.NoError(t, err)
	require.NotNil(t, reopened.Regeneration)
	assert.Equal(t, 1, reopened.Regeneration.CreatedCount)
	assert.Empty(t, reopened.Regeneration.PreservedBooked)
}

func TestService_AutoRegenerationFailureDoesNotFailSave(t *testing.T) {
	store := testfixtures.NewStore()
	svc := newService(store, &testfixtures.Recorder{}).WithAutoRegeneration(failingRegenerator{}, 7)

	resp, err := svc.Save(context.Background(), saveRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Regeneration)
}

type failingRegenerator struct{}

func (failingRegenerator) Execute(context.Context, *generate_slots.Request) (*generate_slots.Response, error) {
	return nil, errors.New("regeneration exploded")
}
