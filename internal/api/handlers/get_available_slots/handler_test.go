package get_available_slots

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

type stubUseCase struct {
	got  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	s.got = req
	return s.resp, s.err
}

func TestHandle_Success(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	employee := int64(3)
	uc := &stubUseCase{resp: &getAvailableSlots.Response{
		FacilityID: 1,
		Date:       &day,
		Slots: []getAvailableSlots.Slot{
			{Date: day, Time: types.TimeString("09:00"), EmployeeID: &employee},
			{Date: day, Time: types.TimeString("10:00")},
		},
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/available-slots?facilityId=1&date=2025-03-11", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.got.Date)
	assert.Equal(t, day, *uc.got.Date)

	var resp AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.FacilityID)
	require.NotNil(t, resp.Date)
	assert.Equal(t, "2025-03-11", *resp.Date)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "09:00", resp.Slots[0].Time)
	assert.Equal(t, &employee, resp.Slots[0].EmployeeID)
	assert.Nil(t, resp.Slots[1].EmployeeID)
}

func TestHandle_WithoutDate(t *testing.T) {
	uc := &stubUseCase{resp: &getAvailableSlots.Response{FacilityID: 1}}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/available-slots?facilityId=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, uc.got.Date)
	assert.JSONEq(t, `{"facilityId":1,"slots":[]}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		err        error
		wantStatus int
	}{
		{name: "missing facility", url: "/api/v1/available-slots", wantStatus: http.StatusBadRequest},
		{name: "negative facility", url: "/api/v1/available-slots?facilityId=-1", wantStatus: http.StatusBadRequest},
		{name: "bad date", url: "/api/v1/available-slots?facilityId=1&date=11.03.2025", wantStatus: http.StatusBadRequest},
		{name: "invalid input", url: "/api/v1/available-slots?facilityId=1", err: getAvailableSlots.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", url: "/api/v1/available-slots?facilityId=1", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tt.err}, logger.NewNop())
			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

