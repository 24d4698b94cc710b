package book_slot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/testfixtures"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/ptr"
)

var (
	slotDay = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	now     = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	store    *testfixtures.Store
	recorder *testfixtures.Recorder
	clock    *testfixtures.Clock
	uc       *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testfixtures.NewStore()
	recorder := &testfixtures.Recorder{}
	clock := testfixtures.NewClock(now)

	_, err := store.Slots().CreateBatch(context.Background(), []*domain.Slot{
		{FacilityID: 1, Date: slotDay, Time: "10:00", EmployeeID: ptr.Ptr(int64(7))},
		{FacilityID: 1, Date: slotDay, Time: "11:00"},
	})
	require.NoError(t, err)

	uc := NewUseCase(
		store.Slots(),
		store.Appointments(),
		store.TxManager(),
		recorder,
		metrics.New("test", prometheus.NewRegistry()),
		logger.NewNop(),
	).WithTimeProvider(clock)

	return &fixture{store: store, recorder: recorder, clock: clock, uc: uc}
}

func request(clientID int64) *Request {
	return &Request{
		ActorID:    clientID,
		ClientID:   clientID,
		FacilityID: 1,
		Date:       slotDay,
		Time:       "10:00",
		Type:       "hydrotherapy",
		Notes:      ptr.Ptr("first visit"),
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), request(10))
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.ClientID)
	assert.Equal(t, int64(7), *resp.EmployeeID)
	assert.Equal(t, "10:00", resp.Time.String())
	assert.False(t, resp.IsCanceled)

	slot, err := f.store.Slots().GetByKey(context.Background(), domain.SlotKey{FacilityID: 1, Date: slotDay, Time: "10:00"})
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, resp.ID, *slot.AppointmentID)
	assert.Equal(t, []string{domain.ActionAppointmentBooked}, f.recorder.Actions())
}

func TestExecute_SlotNotFound(t *testing.T) {
	f := newFixture(t)
	req := request(10)
	req.Time = "12:00"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Empty(t, f.store.AllAppointments())
}

func TestExecute_AlreadyBooked(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), request(10))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request(11))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Len(t, f.store.AllAppointments(), 1)
}

// The in-memory TxManager serializes these calls, so this covers the use case's
// conflict mapping. The guarded UPDATE is pinned in the slot repository tests and
// the unserialized TryBook race in the testfixtures tests.
func TestExecute_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	const clients = 20

	var wg sync.WaitGroup
	errs := make([]error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), request(int64(100+i)))
		}(i)
	}
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotAlreadyBooked):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, clients-1, conflicts)
	assert.Len(t, f.store.AllAppointments(), 1)
}

func TestExecute_RollbackWhenAppointmentCreationFails(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("Appointments.Create", errors.New("disk full"))

	_, err := f.uc.Execute(context.Background(), request(10))
	assert.ErrorIs(t, err, ErrInternal)

	slot, err := f.store.Slots().GetByKey(context.Background(), domain.SlotKey{FacilityID: 1, Date: slotDay, Time: "10:00"})
	require.NoError(t, err)
	assert.False(t, slot.IsBooked)
	assert.Empty(t, f.recorder.Events())

	f.store.FailOn("Appointments.Create", nil)
	_, err = f.uc.Execute(context.Background(), request(10))
	assert.NoError(t, err)
}

func TestExecute_PastSlot(t *testing.T) {
	f := newFixture(t)

	f.clock.Set(time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC))
	_, err := f.uc.Execute(context.Background(), request(10))
	assert.ErrorIs(t, err, ErrInvalidDate)

	f.clock.Set(time.Date(2025, 3, 11, 10, 30, 0, 0, time.UTC))
	_, err = f.uc.Execute(context.Background(), request(10))
	assert.ErrorIs(t, err, ErrInvalidDate)

	f.clock.Set(time.Date(2025, 3, 11, 9, 59, 0, 0, time.UTC))
	_, err = f.uc.Execute(context.Background(), request(10))
	assert.NoError(t, err)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "missing client", mutate: func(r *Request) { r.ClientID = 0 }},
		{name: "missing facility", mutate: func(r *Request) { r.FacilityID = 0 }},
		{name: "missing date", mutate: func(r *Request) { r.Date = time.Time{} }},
		{name: "bad time", mutate: func(r *Request) { r.Time = "10am" }},
		{name: "empty type", mutate: func(r *Request) { r.Type = "  " }},
		{name: "long notes", mutate: func(r *Request) {
			notes := make([]byte, domain.MaxNotesLength+1)
			for i := range notes {
				notes[i] = 'x'
			}
			r.Notes = ptr.Ptr(string(notes))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := request(10)
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
