package models

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

// Request models

// ListAppointmentsRequest selects the appointments of one day for the reminder job
type ListAppointmentsRequest struct {
	Date            string `json:"date"` // YYYY-MM-DD
	FacilityID      *int64 `json:"facilityId,omitempty"`
	IncludeCanceled bool   `json:"includeCanceled,omitempty"`
}

func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.AppointmentsFilter{}, err
	}
	return domain.AppointmentsFilter{
		Date:            date,
		FacilityID:      r.FacilityID,
		IncludeCanceled: r.IncludeCanceled,
	}, nil
}

// Response models

type AppointmentResponse struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"clientId"`
	EmployeeID  *int64    `json:"employeeId,omitempty"`
	FacilityID  int64     `json:"facilityId"`
	Date        string    `json:"date"` // "2025-03-11"
	Time        string    `json:"time"` // "10:00"
	Type        string    `json:"type"`
	Notes       *string   `json:"notes,omitempty"`
	IsConfirmed bool      `json:"isConfirmed"`
	IsCanceled  bool      `json:"isCanceled"`
	IsNoShow    bool      `json:"isNoShow"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// NoShowResponse reports the result of a sweep
type NoShowResponse struct {
	Date   string `json:"date"`
	Marked int    `json:"marked"`
}

// Conversion

func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:          a.ID,
		ClientID:    a.ClientID,
		EmployeeID:  a.EmployeeID,
		FacilityID:  a.FacilityID,
		Date:        a.Date.Format(domain.DateFormat),
		Time:        a.Time.String(),
		Type:        a.Type,
		Notes:       a.Notes,
		IsConfirmed: a.IsConfirmed,
		IsCanceled:  a.IsCanceled,
		IsNoShow:    a.IsNoShow,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}
