package get_available_slots

import "errors"

var (
	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	ErrInternal = errors.New("get_available_slots: internal error")
)
