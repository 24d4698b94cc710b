package generate_slots

import (
	"fmt"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

func validateRequest(req *Request, maxDays int) error {
	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityId must be positive", ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}

	start := domain.DateOnly(req.StartDate)
	end := domain.DateOnly(req.EndDate)
	if end.Before(start) {
		return fmt.Errorf("%w: endDate %s is before startDate %s",
			ErrInvalidRange, end.Format(domain.DateFormat), start.Format(domain.DateFormat))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if maxDays > 0 && days > maxDays {
		return fmt.Errorf("%w: %d days requested, at most %d allowed", ErrInvalidRange, days, maxDays)
	}

	return nil
}
