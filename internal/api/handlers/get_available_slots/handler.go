package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/get_available_slots"
)

const (
	msgInvalidFacilityID = "facilityId is required and must be a positive integer"
	msgInvalidDate       = "invalid date format, expected YYYY-MM-DD"
	msgInvalidRequest    = "invalid request"
)

type Handler struct {
	useCase SlotLister
	logger  Logger
}

func NewHandler(useCase SlotLister, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/available-slots
// Query params: facilityId (required), date (optional, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	facilityID, err := strconv.ParseInt(query.Get("facilityId"), 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("GET /available-slots - Invalid facility ID: %q", query.Get("facilityId"))
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	req := &getAvailableSlots.Request{FacilityID: facilityID}
	if raw := query.Get("date"); raw != "" {
		date, err := domain.ParseDate(raw)
		if err != nil {
			h.logger.Warn("GET /available-slots - Invalid date: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /available-slots - Invalid request: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("GET /available-slots - Failed to list slots: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Returned %d slots: facility_id=%d", len(result.Slots), facilityID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
