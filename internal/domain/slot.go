package domain

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// Slot is one bookable (facility, date, time) cell. Date and Time never change
// after creation; only the booking state does.
type Slot struct {
	ID            int64
	FacilityID    int64
	Date          time.Time
	Time          types.TimeString
	IsBooked      bool
	EmployeeID    *int64
	AppointmentID *int64 // occupying appointment while booked
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key returns the natural key of the slot.
func (s *Slot) Key() SlotKey {
	return SlotKey{FacilityID: s.FacilityID, Date: DateOnly(s.Date), Time: s.Time}
}

// IsFree returns true if the slot can be booked
func (s *Slot) IsFree() bool {
	return !s.IsBooked
}

// SlotKey is the unique (facility, date, time) identity of a slot.
type SlotKey struct {
	FacilityID int64
	Date       time.Time
	Time       types.TimeString
}

// GenerationResult summarizes one regeneration run.
type GenerationResult struct {
	CreatedCount int
	DeletedCount int
	// PreservedBooked lists booked slots that no longer match the schedule.
	PreservedBooked []*Slot
}
