package generate_slots

import (
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	generateSlots "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model
type GenerateSlotsRequest struct {
	StartDate string `json:"startDate"` // "2025-03-10"
	EndDate   string `json:"endDate"`   // "2025-03-16"
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	CreatedCount    int             `json:"createdCount"`
	DeletedCount    int             `json:"deletedCount"`
	PreservedBooked []PreservedSlot `json:"preservedBooked"`
}

type PreservedSlot struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	AppointmentID *int64 `json:"appointmentId,omitempty"`
}

func (r *GenerateSlotsRequest) ToUseCaseRequest(facilityID, actorID int64) (*generateSlots.Request, error) {
	start, err := domain.ParseDate(r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(r.EndDate)
	if err != nil {
		return nil, err
	}

	return &generateSlots.Request{
		FacilityID: facilityID,
		StartDate:  start,
		EndDate:    end,
		ActorID:    actorID,
	}, nil
}

func FromUseCaseResponse(resp *generateSlots.Response) *GenerateSlotsResponse {
	out := &GenerateSlotsResponse{
		CreatedCount:    resp.CreatedCount,
		DeletedCount:    resp.DeletedCount,
		PreservedBooked: make([]PreservedSlot, 0, len(resp.PreservedBooked)),
	}
	for _, p := range resp.PreservedBooked {
		out.PreservedBooked = append(out.PreservedBooked, PreservedSlot{
			Date:          p.Date.Format(domain.DateFormat),
			Time:          p.Time.String(),
			AppointmentID: p.AppointmentID,
		})
	}
	return out
}
