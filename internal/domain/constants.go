package domain

// Business validation constants
const (
	MaxNotesLength           = 500
	MaxAppointmentTypeLength = 64
	MaxSpecialDateReason     = 255
	MaxTemplateEntries       = 96 // one entry every 15 minutes
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Roles carried in the X-User-Role header
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Activity log actions
const (
	ActionScheduleSaved      = "schedule.saved"
	ActionScheduleUpdated    = "schedule.updated"
	ActionSpecialDateAdded   = "schedule.special_date_added"
	ActionSpecialDateRemoved = "schedule.special_date_removed"
	ActionSlotsGenerated     = "slots.generated"
	ActionAppointmentBooked  = "appointment.booked"
	ActionAppointmentCancel  = "appointment.canceled"
	ActionAppointmentConfirm = "appointment.confirmed"
	ActionNoShowSweep        = "appointment.no_show_sweep"
)
