package book_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	bookSlot "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/book_slot"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgInvalidTime        = "invalid time format, expected HH:MM"
	msgMissingUserID      = "missing user ID"
	msgForeignClient      = "only administrators can book for another client"
	msgSlotNotFound       = "slot not found"
	msgSlotNotAvailable   = "slot no longer available"
	msgSlotInPast         = "slot is in the past"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/book
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /book - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BookSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /book - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	clientID := actor.ID
	if req.ClientID != nil && *req.ClientID != actor.ID {
		if !actor.IsAdmin() {
			h.logger.Warn("POST /book - Client booking for someone else: user_id=%d, client_id=%d", actor.ID, *req.ClientID)
			handlers.RespondForbidden(w, msgForeignClient)
			return
		}
		clientID = *req.ClientID
	}

	useCaseReq, err := req.ToUseCaseRequest(actor.ID, clientID)
	if err != nil {
		h.logger.Warn("POST /book - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, bookSlot.ErrSlotAlreadyBooked):
			h.logger.Warn("POST /book - Slot taken: client_id=%d, facility_id=%d, %s %s", clientID, req.FacilityID, req.Date, req.Time)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, bookSlot.ErrSlotNotFound):
			h.logger.Warn("POST /book - Slot not found: facility_id=%d, %s %s", req.FacilityID, req.Date, req.Time)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, bookSlot.ErrInvalidDate):
			h.logger.Warn("POST /book - Slot in the past: facility_id=%d, %s %s", req.FacilityID, req.Date, req.Time)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, bookSlot.ErrInvalidInput):
			h.logger.Warn("POST /book - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /book - Failed to book: client_id=%d, facility_id=%d, error=%v", clientID, req.FacilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /book - Booked: appointment_id=%d, client_id=%d, facility_id=%d", result.ID, clientID, req.FacilityID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
