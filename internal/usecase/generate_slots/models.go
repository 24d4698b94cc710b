package generate_slots

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// Request regenerates slots for StartDate..EndDate inclusive
type Request struct {
	FacilityID int64
	StartDate  time.Time
	EndDate    time.Time
	ActorID    int64 // 0 for scheduled runs
}

// Response counts what the run changed
type Response struct {
	CreatedCount    int
	DeletedCount    int
	PreservedBooked []PreservedSlot // booked slots outside the current schedule
}

// PreservedSlot is a booked slot left in place although the schedule no longer produces it
type PreservedSlot struct {
	Date          time.Time
	Time          types.TimeString
	AppointmentID *int64
}
