package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments/models"
)

// Service handles the appointment lifecycle after booking
type Service struct {
	appointmentRepo AppointmentRepository
	slotRepo        SlotRepository
	txManager       TransactionManager
	recorder        ActivityRecorder
	metrics         Metrics
	logger          Logger
}

func NewService(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	recorder ActivityRecorder,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		slotRepo:        slotRepo,
		txManager:       txManager,
		recorder:        recorder,
		metrics:         metrics,
		logger:          logger,
	}
}

// GetByID returns the appointment if the actor owns it or is an administrator
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for actor=%d", id, actor.ID)

	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !actor.CanAccess(a.ClientID) {
		s.logger.Warn("GetByID: access denied for actor=%d to appointment id=%d", actor.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(a), nil
}

// List returns the appointments of one day, ordered by time
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid date=%q", req.Date)
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for date=%s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments for date=%s", len(list), req.Date)
	return models.FromDomainAppointmentList(list), nil
}

// Cancel marks the appointment canceled and frees its slot in one transaction.
// A slot that no longer exists is not an error.
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: canceling appointment id=%d by actor=%d", id, actor.ID)

	var canceled *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: Cancel - get appointment: %v", ErrInternal, err)
		}

		if !actor.CanAccess(a.ClientID) {
			return ErrAccessDenied
		}
		if !a.CanBeCanceled() {
			return ErrAlreadyCanceled
		}

		if err := s.appointmentRepo.Cancel(txCtx, id); err != nil {
			if errors.Is(err, appointmentRepo.ErrStateConflict) {
				return ErrAlreadyCanceled
			}
			return fmt.Errorf("%w: Cancel - update appointment: %v", ErrInternal, err)
		}

		released, err := s.slotRepo.Release(txCtx, a.SlotKey(), id)
		if err != nil {
			return fmt.Errorf("%w: Cancel - release slot: %v", ErrInternal, err)
		}
		if !released {
			s.logger.Warn("Cancel: slot of appointment id=%d no longer exists", id)
		}

		a.IsCanceled = true
		canceled = a
		return nil
	})
	if err != nil {
		s.logResult("Cancel", id, err)
		return nil, err
	}

	s.recorder.Record(ctx, domain.ActivityEvent{
		ActorID:    actor.ID,
		Action:     domain.ActionAppointmentCancel,
		FacilityID: canceled.FacilityID,
		Detail: fmt.Sprintf("appointment=%d %s %s",
			id, canceled.Date.Format(domain.DateFormat), canceled.Time),
	})

	s.logger.Info("Cancel: appointment id=%d canceled", id)
	return models.FromDomainAppointment(canceled), nil
}

// Confirm marks the appointment confirmed. Confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("Confirm: confirming appointment id=%d by actor=%d", id, actor.ID)

	var confirmed *domain.Appointment
	changed := false
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: Confirm - get appointment: %v", ErrInternal, err)
		}

		if !actor.CanAccess(a.ClientID) {
			return ErrAccessDenied
		}
		if !a.CanBeConfirmed() {
			return ErrCannotConfirm
		}

		confirmed = a
		if a.IsConfirmed {
			return nil
		}

		if err := s.appointmentRepo.Confirm(txCtx, id); err != nil {
			if errors.Is(err, appointmentRepo.ErrStateConflict) {
				return ErrCannotConfirm
			}
			return fmt.Errorf("%w: Confirm - update appointment: %v", ErrInternal, err)
		}
		a.IsConfirmed = true
		changed = true
		return nil
	})
	if err != nil {
		s.logResult("Confirm", id, err)
		return nil, err
	}

	if changed {
		s.recorder.Record(ctx, domain.ActivityEvent{
			ActorID:    actor.ID,
			Action:     domain.ActionAppointmentConfirm,
			FacilityID: confirmed.FacilityID,
			Detail:     fmt.Sprintf("appointment=%d", id),
		})
	}

	return models.FromDomainAppointment(confirmed), nil
}

// MarkNoShow flags every appointment of date that was neither canceled nor confirmed.
// Slots stay booked.
func (s *Service) MarkNoShow(ctx context.Context, date time.Time, actorID int64) (int, error) {
	day := domain.DateOnly(date)
	s.logger.Info("MarkNoShow: sweeping date=%s by actor=%d", day.Format(domain.DateFormat), actorID)

	marked, err := s.appointmentRepo.MarkNoShow(ctx, day)
	if err != nil {
		s.logger.Error("MarkNoShow: repository error for date=%s: %v", day.Format(domain.DateFormat), err)
		return 0, fmt.Errorf("%w: MarkNoShow - repository error: %v", ErrInternal, err)
	}

	s.metrics.AddNoShows(marked)
	s.recorder.Record(ctx, domain.ActivityEvent{
		ActorID: actorID,
		Action:  domain.ActionNoShowSweep,
		Detail:  fmt.Sprintf("date=%s marked=%d", day.Format(domain.DateFormat), marked),
	})

	s.logger.Info("MarkNoShow: marked %d appointments for date=%s", marked, day.Format(domain.DateFormat))
	return marked, nil
}

// Helper methods

func (s *Service) logResult(op string, id int64, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: appointment id=%d: %v", op, id, err)
		return
	}
	s.logger.Warn("%s: appointment id=%d: %v", op, id, err)
}
