package cancel_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments"
)

const (
	msgInvalidRequestBody   = "invalid request body"
	msgInvalidAppointmentID = "appointmentId must be a positive integer"
	msgMissingUserID        = "missing user ID"
	msgNotFound             = "appointment not found"
	msgForbidden            = "access denied"
	msgAlreadyCanceled      = "appointment already canceled"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CancelRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.AppointmentID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	canceled, err := h.service.Cancel(r.Context(), req.AppointmentID, actor)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("POST /cancel - Not found: appointment_id=%d", req.AppointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("POST /cancel - Access denied: appointment_id=%d, user_id=%d", req.AppointmentID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrAlreadyCanceled):
			h.logger.Warn("POST /cancel - Already canceled: appointment_id=%d", req.AppointmentID)
			handlers.RespondConflict(w, msgAlreadyCanceled)

		default:
			h.logger.Error("POST /cancel - Failed to cancel: appointment_id=%d, error=%v", req.AppointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /cancel - Canceled: appointment_id=%d, user_id=%d", req.AppointmentID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, canceled)
}
