package mark_no_show

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
)

type stubMarker struct {
	gotDate  time.Time
	gotActor int64
	marked   int
	err      error
}

func (s *stubMarker) MarkNoShow(_ context.Context, date time.Time, actorID int64) (int, error) {
	s.gotDate, s.gotActor = date, actorID
	return s.marked, s.err
}

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/no-show", strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{ID: 1, Role: domain.RoleAdmin}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	marker := &stubMarker{marked: 3}
	rec := serve(NewHandler(marker, logger.NewNop()), `{"date":"2025-03-11"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), marker.gotDate)
	assert.Equal(t, int64(1), marker.gotActor)
	assert.JSONEq(t, `{"date":"2025-03-11","marked":3}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "bad body", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: `{"date":"yesterday"}`, wantStatus: http.StatusBadRequest},
		{name: "internal", body: `{"date":"2025-03-11"}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubMarker{err: tt.err}, logger.NewNop()), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
