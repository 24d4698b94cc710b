package generate_slots

import "errors"

var (
	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("generate_slots: invalid input data")

	// ErrInvalidRange is returned when endDate < startDate or the range is too long
	ErrInvalidRange = errors.New("generate_slots: invalid date range")

	// ErrConfigurationMissing is returned when the facility has no schedule configuration
	ErrConfigurationMissing = errors.New("generate_slots: schedule configuration missing")

	// ErrGenerationInProgress is returned when another regeneration holds the facility lock
	ErrGenerationInProgress = errors.New("generate_slots: regeneration already in progress")

	// ErrInternal is returned on unexpected storage failures
	ErrInternal = errors.New("generate_slots: internal error")
)
