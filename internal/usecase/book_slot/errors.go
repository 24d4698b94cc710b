package book_slot

import "errors"

var (
	// ErrSlotNotFound is returned when the facility has no slot at the requested date and time
	ErrSlotNotFound = errors.New("book_slot: slot not found")

	// ErrSlotAlreadyBooked is returned when another client holds the slot
	ErrSlotAlreadyBooked = errors.New("book_slot: slot no longer available")

	// ErrInvalidDate is returned for slots that already started
	ErrInvalidDate = errors.New("book_slot: slot is in the past")

	ErrInvalidInput = errors.New("book_slot: invalid input data")

	ErrInternal = errors.New("book_slot: internal error")
)
