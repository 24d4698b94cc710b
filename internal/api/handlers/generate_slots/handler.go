package generate_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	generateSlots "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
)

const (
	msgInvalidFacilityID  = "invalid facility ID"
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgMissingUserID      = "missing user ID"
	msgInvalidRange       = "invalid date range"
	msgConfigMissing      = "schedule configuration not found"
	msgInProgress         = "slot regeneration already in progress for this facility"
)

type Handler struct {
	useCase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/work-schedule/{facilityId}/update-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("POST /work-schedule/{id}/update-slots - Invalid facility ID: %q", mux.Vars(r)["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /work-schedule/{id}/update-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(facilityID, actorID)
	if err != nil {
		h.logger.Warn("POST /work-schedule/{id}/update-slots - Invalid dates: start=%q, end=%q", req.StartDate, req.EndDate)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrInvalidRange):
			h.logger.Warn("POST /work-schedule/{id}/update-slots - Invalid range: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /work-schedule/{id}/update-slots - Invalid input: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, generateSlots.ErrConfigurationMissing):
			h.logger.Warn("POST /work-schedule/{id}/update-slots - No schedule: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgConfigMissing)

		case errors.Is(err, generateSlots.ErrGenerationInProgress):
			h.logger.Warn("POST /work-schedule/{id}/update-slots - Already running: facility_id=%d", facilityID)
			handlers.RespondConflict(w, msgInProgress)

		default:
			h.logger.Error("POST /work-schedule/{id}/update-slots - Failed to regenerate: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /work-schedule/{id}/update-slots - Done: facility_id=%d, created=%d, deleted=%d, preserved=%d",
		facilityID, result.CreatedCount, result.DeletedCount, len(result.PreservedBooked))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
