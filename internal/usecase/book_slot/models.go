package book_slot

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// Request books the slot (FacilityID, Date, Time) for ClientID
type Request struct {
	ActorID    int64 // caller, differs from ClientID when an administrator books for a client
	ClientID   int64
	FacilityID int64
	Date       time.Time
	Time       types.TimeString
	Type       string
	Notes      *string
}

type Response struct {
	ID          int64
	ClientID    int64
	EmployeeID  *int64
	FacilityID  int64
	Date        time.Time
	Time        types.TimeString
	Type        string
	Notes       *string
	IsConfirmed bool
	IsCanceled  bool
	IsNoShow    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
