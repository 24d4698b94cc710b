package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/lock"
	scheduleRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/schedule"
)

// UseCase materializes slots for a date range from the facility schedule
type UseCase struct {
	scheduleRepo ScheduleRepository
	slotRepo     SlotRepository
	txManager    TransactionManager
	locker       Locker
	recorder     ActivityRecorder
	metrics      Metrics
	logger       Logger
	maxDays      int
}

func NewUseCase(
	scheduleRepo ScheduleRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	locker Locker,
	recorder ActivityRecorder,
	metrics Metrics,
	logger Logger,
	maxDays int,
) *UseCase {
	return &UseCase{
		scheduleRepo: scheduleRepo,
		slotRepo:     slotRepo,
		txManager:    txManager,
		locker:       locker,
		recorder:     recorder,
		metrics:      metrics,
		logger:       logger,
		maxDays:      maxDays,
	}
}

// Execute regenerates the slots of one facility. Free slots that no longer match
// the schedule are removed, booked slots are always kept.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: facility=%d, range=%s..%s, actor=%d",
		req.FacilityID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.ActorID)

	// 1. Validate the range before touching anything
	if err := validateRequest(req, uc.maxDays); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}
	start := domain.DateOnly(req.StartDate)
	end := domain.DateOnly(req.EndDate)

	// 2. One regeneration per facility at a time
	release, err := uc.locker.Acquire(ctx, strconv.FormatInt(req.FacilityID, 10))
	switch {
	case errors.Is(err, lock.ErrLockHeld):
		uc.logger.Warn("GenerateSlots: facility=%d is already being regenerated", req.FacilityID)
		return nil, ErrGenerationInProgress
	case err != nil:
		// Row locks in ListByRange still keep concurrent runs consistent.
		uc.logger.Warn("GenerateSlots: lock unavailable, continuing without it: %v", err)
	default:
		defer release()
	}

	var result plan
	var created, deleted int

	// 3. Plan and apply in one transaction
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		cfg, err := uc.scheduleRepo.Get(txCtx, req.FacilityID)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
				uc.logger.Warn("GenerateSlots: facility=%d has no schedule configuration", req.FacilityID)
				return ErrConfigurationMissing
			}
			return fmt.Errorf("%w: failed to get configuration: %v", ErrInternal, err)
		}

		existing, err := uc.slotRepo.ListByRange(txCtx, req.FacilityID, start, end)
		if err != nil {
			return fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
		}

		result = planSlots(cfg, start, end, existing)

		if len(result.create) > 0 {
			created, err = uc.slotRepo.CreateBatch(txCtx, result.create)
			if err != nil {
				return fmt.Errorf("%w: failed to create slots: %v", ErrInternal, err)
			}
		}

		if len(result.deleteIDs) > 0 {
			deleted, err = uc.slotRepo.DeleteUnbooked(txCtx, result.deleteIDs)
			if err != nil {
				return fmt.Errorf("%w: failed to delete slots: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrConfigurationMissing) {
			uc.logger.Error("GenerateSlots: facility=%d: %v", req.FacilityID, err)
		}
		return nil, err
	}

	// 4. Report
	uc.metrics.AddSlotChanges(req.FacilityID, created, deleted)
	uc.recorder.Record(ctx, domain.ActivityEvent{
		ActorID:    req.ActorID,
		Action:     domain.ActionSlotsGenerated,
		FacilityID: req.FacilityID,
		Detail: fmt.Sprintf("%s..%s created=%d deleted=%d preserved=%d",
			start.Format(domain.DateFormat), end.Format(domain.DateFormat), created, deleted, len(result.preserved)),
	})

	uc.logger.Info("GenerateSlots: facility=%d created=%d deleted=%d preserved=%d",
		req.FacilityID, created, deleted, len(result.preserved))

	return toResponse(created, deleted, result.preserved), nil
}

func toResponse(created, deleted int, preserved []*domain.Slot) *Response {
	resp := &Response{
		CreatedCount:    created,
		DeletedCount:    deleted,
		PreservedBooked: make([]PreservedSlot, 0, len(preserved)),
	}
	for _, s := range preserved {
		resp.PreservedBooked = append(resp.PreservedBooked, PreservedSlot{
			Date:          s.Date,
			Time:          s.Time,
			AppointmentID: s.AppointmentID,
		})
	}
	return resp
}
