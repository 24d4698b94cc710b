package mark_no_show

import (
	"net/http"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments/models"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgMissingUserID      = "missing user ID"
)

type Handler struct {
	marker NoShowMarker
	logger Logger
}

func NewHandler(marker NoShowMarker, logger Logger) *Handler {
	return &Handler{
		marker: marker,
		logger: logger,
	}
}

// Handle POST /api/v1/appointments/no-show
// Runs the no-show sweep for one day on demand.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req MarkNoShowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/no-show - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		h.logger.Warn("POST /appointments/no-show - Invalid date: %q", req.Date)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	marked, err := h.marker.MarkNoShow(r.Context(), date, actorID)
	if err != nil {
		h.logger.Error("POST /appointments/no-show - Sweep failed: date=%s, error=%v", req.Date, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /appointments/no-show - Marked %d appointments: date=%s, actor_id=%d", marked, req.Date, actorID)
	handlers.RespondJSON(w, http.StatusOK, models.NoShowResponse{Date: req.Date, Marked: marked})
}
