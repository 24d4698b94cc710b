package save_schedule

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

// Handle POST /api/v1/work-schedule/{facilityId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("POST /work-schedule/{id} - Invalid facility ID: %q", mux.Vars(r)["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.SaveScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /work-schedule/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.FacilityID = facilityID
	req.ActorID = actorID

	saved, err := h.service.Save(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /work-schedule/{id} - Validation failed: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /work-schedule/{id} - Failed to save schedule: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /work-schedule/{id} - Schedule saved: facility_id=%d, actor_id=%d", facilityID, actorID)
	handlers.RespondJSON(w, http.StatusOK, saved)
}
