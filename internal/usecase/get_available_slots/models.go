package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// Request lists free slots of a facility. A nil Date lists every upcoming day.
type Request struct {
	FacilityID int64
	Date       *time.Time
}

type Response struct {
	FacilityID int64
	Date       *time.Time
	Slots      []Slot
}

type Slot struct {
	Date       time.Time
	Time       types.TimeString
	EmployeeID *int64
}
