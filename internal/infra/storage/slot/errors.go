package slot

import "errors"

var (
	// ErrSlotNotFound is returned when no slot exists for the key
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotAlreadyBooked is returned by TryBook when another booking won the slot
	ErrSlotAlreadyBooked = errors.New("slot.repository: slot already booked")

	ErrBuildQuery = errors.New("slot.repository: failed to build query")
	ErrExecQuery  = errors.New("slot.repository: failed to execute query")
	ErrScanRow    = errors.New("slot.repository: failed to scan row")
)
