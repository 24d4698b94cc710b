package domain

// ActivityEvent is an append-only audit record. ActorID 0 means the system itself.
type ActivityEvent struct {
	ActorID    int64
	Action     string
	FacilityID int64
	Detail     string
}
