package cancel_appointment

// CancelRequest HTTP request model
type CancelRequest struct {
	AppointmentID int64 `json:"appointmentId"`
}
