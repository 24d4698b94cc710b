package domain

// Actor is the authenticated caller as reported by the gateway headers.
type Actor struct {
	ID   int64
	Role string
}

// SystemActor is used for scheduled jobs.
var SystemActor = Actor{ID: 0, Role: RoleAdmin}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess returns true if the actor owns the resource or is an administrator
func (a Actor) CanAccess(ownerID int64) bool {
	return a.IsAdmin() || (a.ID != 0 && a.ID == ownerID)
}
