package remove_special_date

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule/models"
)

const (
	msgInvalidFacilityID = "invalid facility ID"
	msgInvalidDate       = "invalid date format, expected YYYY-MM-DD"
	msgMissingUserID     = "missing user ID"
	msgNotFound          = "special date not found"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/work-schedule/{facilityId}/special-dates/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("DELETE /work-schedule/{id}/special-dates/{date} - Invalid facility ID: %q", vars["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.RemoveSpecialDateRequest{
		FacilityID: facilityID,
		ActorID:    actorID,
		Date:       vars["date"],
	}

	resp, err := h.service.RemoveSpecialDate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrSpecialDateNotFound):
			h.logger.Warn("DELETE /work-schedule/{id}/special-dates/{date} - Not found: facility_id=%d, date=%s", facilityID, req.Date)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("DELETE /work-schedule/{id}/special-dates/{date} - Invalid date: %q", req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("DELETE /work-schedule/{id}/special-dates/{date} - Failed to remove: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /work-schedule/{id}/special-dates/{date} - Removed: facility_id=%d, date=%s", facilityID, req.Date)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
