package book_slot

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientId must be positive", ErrInvalidInput)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityId must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Time.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if err := req.Time.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	if strings.TrimSpace(req.Type) == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidInput)
	}
	if len(req.Type) > domain.MaxAppointmentTypeLength {
		return fmt.Errorf("%w: type exceeds %d characters", ErrInvalidInput, domain.MaxAppointmentTypeLength)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateNotInPast rejects past days and slots of today that already started.
func validateNotInPast(req *Request, now time.Time) error {
	today := domain.DateOnly(now)
	day := domain.DateOnly(req.Date)

	if day.Before(today) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, day.Format(domain.DateFormat))
	}
	if day.Equal(today) && req.Time.IsBefore(types.NewTimeString(now)) {
		return fmt.Errorf("%w: %s %s", ErrInvalidDate, day.Format(domain.DateFormat), req.Time)
	}

	return nil
}
