package activitylog

import "errors"

var (
	// ErrInternal is returned when the request could not be built or sent
	ErrInternal = errors.New("activitylog client: internal error")

	// ErrInvalidResponse is returned for unexpected status codes
	ErrInvalidResponse = errors.New("activitylog client: invalid response")
)
