package book_slot

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	bookSlot "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/book_slot"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// BookSlotRequest HTTP request model
type BookSlotRequest struct {
	FacilityID int64   `json:"facilityId"`
	Date       string  `json:"date"` // "2025-03-11"
	Time       string  `json:"time"` // "10:00"
	Type       string  `json:"type"`
	Notes      *string `json:"notes,omitempty"`
	ClientID   *int64  `json:"clientId,omitempty"` // administrators only
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID          int64   `json:"id"`
	ClientID    int64   `json:"clientId"`
	EmployeeID  *int64  `json:"employeeId,omitempty"`
	FacilityID  int64   `json:"facilityId"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Type        string  `json:"type"`
	Notes       *string `json:"notes,omitempty"`
	IsConfirmed bool    `json:"isConfirmed"`
	IsCanceled  bool    `json:"isCanceled"`
	IsNoShow    bool    `json:"isNoShow"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// ToUseCaseRequest parses date and time. clientID is the resolved owner of the appointment.
func (r *BookSlotRequest) ToUseCaseRequest(actorID, clientID int64) (*bookSlot.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	slotTime, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return nil, errInvalidTime
	}

	return &bookSlot.Request{
		ActorID:    actorID,
		ClientID:   clientID,
		FacilityID: r.FacilityID,
		Date:       date,
		Time:       slotTime,
		Type:       r.Type,
		Notes:      r.Notes,
	}, nil
}

func FromUseCaseResponse(resp *bookSlot.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:          resp.ID,
		ClientID:    resp.ClientID,
		EmployeeID:  resp.EmployeeID,
		FacilityID:  resp.FacilityID,
		Date:        resp.Date.Format(domain.DateFormat),
		Time:        resp.Time.String(),
		Type:        resp.Type,
		Notes:       resp.Notes,
		IsConfirmed: resp.IsConfirmed,
		IsCanceled:  resp.IsCanceled,
		IsNoShow:    resp.IsNoShow,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   resp.UpdatedAt.Format(time.RFC3339),
	}
}
