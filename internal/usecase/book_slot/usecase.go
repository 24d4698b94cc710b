package book_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	slotRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
)

// UseCase books a free slot and creates the appointment that occupies it
type UseCase struct {
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	recorder        ActivityRecorder
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

func NewUseCase(
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	recorder ActivityRecorder,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		recorder:        recorder,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider overrides the clock used for the past-date check.
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute flips the slot with a compare-and-set and inserts the appointment in the
// same transaction. Of N concurrent requests for one slot exactly one succeeds.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookSlot: client=%d, facility=%d, date=%s, time=%s",
		req.ClientID, req.FacilityID, req.Date.Format(domain.DateFormat), req.Time)

	// 1. Validate input
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Slots that already started cannot be booked
	if err := validateNotInPast(req, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("BookSlot: %v", err)
		return nil, err
	}

	key := domain.SlotKey{FacilityID: req.FacilityID, Date: domain.DateOnly(req.Date), Time: req.Time}
	var created *domain.Appointment

	// 3. Flip the slot and create the appointment; any failure rolls the flip back
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		slot, err := uc.slotRepo.TryBook(txCtx, key)
		if err != nil {
			switch {
			case errors.Is(err, slotRepo.ErrSlotNotFound):
				return ErrSlotNotFound
			case errors.Is(err, slotRepo.ErrSlotAlreadyBooked):
				return ErrSlotAlreadyBooked
			}
			return fmt.Errorf("%w: failed to book slot: %v", ErrInternal, err)
		}

		created, err = uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			ClientID:   req.ClientID,
			EmployeeID: slot.EmployeeID,
			FacilityID: req.FacilityID,
			Date:       key.Date,
			Time:       req.Time,
			Type:       req.Type,
			Notes:      req.Notes,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		if err := uc.slotRepo.AttachAppointment(txCtx, slot.ID, created.ID); err != nil {
			return fmt.Errorf("%w: failed to attach appointment to slot id=%d: %v", ErrInternal, slot.ID, err)
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			uc.metrics.IncBooking(metrics.OutcomeNotFound)
			uc.logger.Warn("BookSlot: slot %s %s not found for facility=%d",
				key.Date.Format(domain.DateFormat), key.Time, key.FacilityID)
		case errors.Is(err, ErrSlotAlreadyBooked):
			uc.metrics.IncBooking(metrics.OutcomeAlreadyBooked)
			uc.logger.Warn("BookSlot: slot %s %s already booked for facility=%d",
				key.Date.Format(domain.DateFormat), key.Time, key.FacilityID)
		default:
			uc.metrics.IncBooking(metrics.OutcomeFailed)
			uc.logger.Error("BookSlot: %v", err)
		}
		return nil, err
	}

	uc.metrics.IncBooking(metrics.OutcomeBooked)
	uc.recorder.Record(ctx, domain.ActivityEvent{
		ActorID:    req.ActorID,
		Action:     domain.ActionAppointmentBooked,
		FacilityID: req.FacilityID,
		Detail: fmt.Sprintf("appointment=%d client=%d %s %s",
			created.ID, created.ClientID, key.Date.Format(domain.DateFormat), key.Time),
	})

	uc.logger.Info("BookSlot: created appointment id=%d", created.ID)

	return toResponse(created), nil
}

func toResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:          a.ID,
		ClientID:    a.ClientID,
		EmployeeID:  a.EmployeeID,
		FacilityID:  a.FacilityID,
		Date:        a.Date,
		Time:        a.Time,
		Type:        a.Type,
		Notes:       a.Notes,
		IsConfirmed: a.IsConfirmed,
		IsCanceled:  a.IsCanceled,
		IsNoShow:    a.IsNoShow,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
