package schedule

import "errors"

var (
	// ErrConfigNotFound is returned when the facility has no schedule configuration
	ErrConfigNotFound = errors.New("schedule.repository: configuration not found")

	// ErrDuplicateSpecialDate is returned when the facility already has an override for the date
	ErrDuplicateSpecialDate = errors.New("schedule.repository: special date already exists")

	// ErrSpecialDateNotFound is returned when removing a date that has no override
	ErrSpecialDateNotFound = errors.New("schedule.repository: special date not found")

	ErrBuildQuery = errors.New("schedule.repository: failed to build query")
	ErrExecQuery  = errors.New("schedule.repository: failed to execute query")
	ErrScanRow    = errors.New("schedule.repository: failed to scan row")
)
