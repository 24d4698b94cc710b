package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// UseCase lists the bookable slots of a facility
type UseCase struct {
	slotRepo     SlotRepository
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(slotRepo SlotRepository, logger Logger) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider overrides the clock used to hide slots that already started.
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute returns free slots ordered by date and time. Past days and slots
// of today that already started are left out.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Validate input
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	today := domain.DateOnly(now)

	resp := &Response{FacilityID: req.FacilityID, Slots: []Slot{}}

	// 2. Nothing is bookable in the past
	if req.Date != nil {
		day := domain.DateOnly(*req.Date)
		resp.Date = &day
		if day.Before(today) {
			return resp, nil
		}
	}

	// 3. Load free slots
	slots, err := uc.slotRepo.ListAvailable(ctx, req.FacilityID, resp.Date, today)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: facility=%d: failed to list slots: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}

	// 4. Drop slots of today that already started
	current := types.NewTimeString(now)
	for _, s := range slots {
		if domain.DateOnly(s.Date).Equal(today) && s.Time.IsBefore(current) {
			continue
		}
		resp.Slots = append(resp.Slots, Slot{Date: s.Date, Time: s.Time, EmployeeID: s.EmployeeID})
	}

	return resp, nil
}
