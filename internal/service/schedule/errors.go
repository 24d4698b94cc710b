package schedule

import "errors"

var (
	// ErrConfigNotFound is returned when the facility has no schedule configuration
	ErrConfigNotFound = errors.New("schedule: configuration not found")

	// ErrSpecialDateNotFound is returned when removing an override that does not exist
	ErrSpecialDateNotFound = errors.New("schedule: special date not found")

	// ErrDuplicateDate is returned when the facility already has an override for the date
	ErrDuplicateDate = errors.New("schedule: special date already exists")

	// ErrInvalidInput is returned when the configuration fails validation
	ErrInvalidInput = errors.New("schedule: invalid input data")

	ErrInternal = errors.New("schedule: internal error")
)
