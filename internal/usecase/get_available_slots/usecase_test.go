package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/testfixtures"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/ptr"
)

func date(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T, now time.Time) (*testfixtures.Store, *UseCase) {
	t.Helper()
	store := testfixtures.NewStore()
	ctx := context.Background()

	_, err := store.Slots().CreateBatch(ctx, []*domain.Slot{
		{FacilityID: 1, Date: date(10), Time: "09:00"},
		{FacilityID: 1, Date: date(11), Time: "09:00"},
		{FacilityID: 1, Date: date(11), Time: "11:00"},
		{FacilityID: 1, Date: date(12), Time: "10:00"},
		{FacilityID: 1, Date: date(11), Time: "10:00"},
		{FacilityID: 2, Date: date(11), Time: "09:00"},
	})
	require.NoError(t, err)

	_, err = store.Slots().TryBook(ctx, domain.SlotKey{FacilityID: 1, Date: date(12), Time: "10:00"})
	require.NoError(t, err)

	uc := NewUseCase(store.Slots(), logger.NewNop()).WithTimeProvider(testfixtures.NewClock(now))
	return store, uc
}

func times(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Date.Format(domain.DateFormat)+" "+s.Time.String())
	}
	return out
}

func TestExecute_ForDate(t *testing.T) {
	_, uc := setup(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: 1, Date: ptr.Ptr(date(11))})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-03-11 09:00", "2025-03-11 10:00", "2025-03-11 11:00"}, times(resp.Slots))
	assert.Equal(t, date(11), *resp.Date)
}

func TestExecute_BookedSlotsHidden(t *testing.T) {
	_, uc := setup(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: 1, Date: ptr.Ptr(date(12))})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_AllUpcoming(t *testing.T) {
	_, uc := setup(t, time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-03-11 10:00", "2025-03-11 11:00"}, times(resp.Slots))
	assert.Nil(t, resp.Date)
}

func TestExecute_PastDate(t *testing.T) {
	_, uc := setup(t, time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: 1, Date: ptr.Ptr(date(10))})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_InvalidFacility(t *testing.T) {
	_, uc := setup(t, time.Now())

	_, err := uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_StoreFailure(t *testing.T) {
	store, uc := setup(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	store.FailOn("Slots.ListAvailable", errors.New("timeout"))

	_, err := uc.Execute(context.Background(), &Request{FacilityID: 1})
	assert.ErrorIs(t, err, ErrInternal)
}
