package generate_slots

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	generateSlots "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

type stubUseCase struct {
	got  *generateSlots.Request
	resp *generateSlots.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *generateSlots.Request) (*generateSlots.Response, error) {
	s.got = req
	return s.resp, s.err
}

const body = `{"startDate":"2025-03-10","endDate":"2025-03-16"}`

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/work-schedule/{facilityId}/update-slots", h.Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/work-schedule/1/update-slots", strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{ID: 2, Role: domain.RoleAdmin}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	appointmentID := int64(77)
	uc := &stubUseCase{resp: &generateSlots.Response{
		CreatedCount: 12,
		DeletedCount: 2,
		PreservedBooked: []generateSlots.PreservedSlot{
			{Date: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), Time: types.TimeString("10:00"), AppointmentID: &appointmentID},
		},
	}}

	rec := serve(NewHandler(uc, logger.NewNop()), body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), uc.got.FacilityID)
	assert.Equal(t, int64(2), uc.got.ActorID)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), uc.got.StartDate)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), uc.got.EndDate)

	var resp GenerateSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.CreatedCount)
	assert.Equal(t, 2, resp.DeletedCount)
	require.Len(t, resp.PreservedBooked, 1)
	assert.Equal(t, PreservedSlot{Date: "2025-03-12", Time: "10:00", AppointmentID: &appointmentID}, resp.PreservedBooked[0])
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "bad body", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: `{"startDate":"10/03/2025","endDate":"2025-03-16"}`, wantStatus: http.StatusBadRequest},
		{name: "range", body: body, err: generateSlots.ErrInvalidRange, wantStatus: http.StatusBadRequest},
		{name: "no schedule", body: body, err: generateSlots.ErrConfigurationMissing, wantStatus: http.StatusNotFound},
		{name: "in progress", body: body, err: generateSlots.ErrGenerationInProgress, wantStatus: http.StatusConflict},
		{name: "internal", body: body, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubUseCase{err: tt.err}, logger.NewNop()), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
