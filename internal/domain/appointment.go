package domain

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// Appointment is a client's booking of one slot.
type Appointment struct {
	ID          int64
	ClientID    int64
	EmployeeID  *int64
	FacilityID  int64
	Date        time.Time
	Time        types.TimeString
	Type        string // category of therapy or service
	Notes       *string
	IsConfirmed bool
	IsCanceled  bool
	IsNoShow    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true while the appointment holds its slot
func (a *Appointment) IsActive() bool {
	return !a.IsCanceled
}

// CanBeCanceled returns true if the appointment can be canceled
func (a *Appointment) CanBeCanceled() bool {
	return !a.IsCanceled
}

// CanBeConfirmed returns true if the appointment can be confirmed
func (a *Appointment) CanBeConfirmed() bool {
	return !a.IsCanceled && !a.IsNoShow
}

// SlotKey returns the key of the slot the appointment occupies.
func (a *Appointment) SlotKey() SlotKey {
	return SlotKey{FacilityID: a.FacilityID, Date: DateOnly(a.Date), Time: a.Time}
}

// AppointmentsFilter selects appointments for the reminder job.
type AppointmentsFilter struct {
	Date            time.Time
	FacilityID      *int64
	IncludeCanceled bool
}
