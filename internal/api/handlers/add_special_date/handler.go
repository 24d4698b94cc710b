package add_special_date

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
	msgInvalidFacilityID  = "invalid facility ID"
	msgInvalidRequestBody = "invalid request body"
	msgMissingUserID      = "missing user ID"
	msgNotFound           = "schedule configuration not found"
	msgDuplicateDate      = "special date already exists for this facility"
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

// Handle POST /api/v1/work-schedule/{facilityId}/special-dates
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("POST /work-schedule/{id}/special-dates - Invalid facility ID: %q", mux.Vars(r)["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.AddSpecialDateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /work-schedule/{id}/special-dates - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.FacilityID = facilityID
	req.ActorID = actorID

	updated, err := h.service.AddSpecialDate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrConfigNotFound):
			h.logger.Warn("POST /work-schedule/{id}/special-dates - Not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrDuplicateDate):
			h.logger.Warn("POST /work-schedule/{id}/special-dates - Duplicate date: facility_id=%d, date=%s", facilityID, req.Date)
			handlers.RespondConflict(w, msgDuplicateDate)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /work-schedule/{id}/special-dates - Validation failed: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /work-schedule/{id}/special-dates - Failed to add special date: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /work-schedule/{id}/special-dates - Added: facility_id=%d, date=%s", facilityID, req.Date)
	handlers.RespondJSON(w, http.StatusCreated, updated)
}
