package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when the appointment does not exist
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrAccessDenied is returned when the caller neither owns the appointment nor is an administrator
	ErrAccessDenied = errors.New("appointments: access denied")

	// ErrAlreadyCanceled is returned when canceling an appointment twice
	ErrAlreadyCanceled = errors.New("appointments: appointment already canceled")

	// ErrCannotConfirm is returned for canceled or no-show appointments
	ErrCannotConfirm = errors.New("appointments: appointment cannot be confirmed")

	ErrInvalidInput = errors.New("appointments: invalid input data")

	ErrInternal = errors.New("appointments: internal error")
)
