package get_available_slots

import (
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/get_available_slots"
)

type AvailableSlotsResponse struct {
	FacilityID int64          `json:"facilityId"`
	Date       *string        `json:"date,omitempty"`
	Slots      []SlotResponse `json:"slots"`
}

type SlotResponse struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
}

func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		FacilityID: resp.FacilityID,
		Slots:      make([]SlotResponse, 0, len(resp.Slots)),
	}
	if resp.Date != nil {
		d := resp.Date.Format(domain.DateFormat)
		out.Date = &d
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, SlotResponse{
			Date:       s.Date.Format(domain.DateFormat),
			Time:       s.Time.String(),
			EmployeeID: s.EmployeeID,
		})
	}
	return out
}
