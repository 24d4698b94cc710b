package activitylog

import (
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

// EventRequest is the payload accepted by the activity log service
type EventRequest struct {
	ActorID    int64     `json:"actorId"`
	Action     string    `json:"action"`
	FacilityID int64     `json:"facilityId"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ErrorResponse error body returned by the activity log service
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func fromDomainEvent(e domain.ActivityEvent, at time.Time) EventRequest {
	return EventRequest{
		ActorID:    e.ActorID,
		Action:     e.Action,
		FacilityID: e.FacilityID,
		Detail:     e.Detail,
		OccurredAt: at.UTC(),
	}
}
