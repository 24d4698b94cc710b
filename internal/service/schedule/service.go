package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule/models"
	"github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
)

// Service manages facility schedule configurations
type Service struct {
	scheduleRepo ScheduleRepository
	txManager    TransactionManager
	recorder     ActivityRecorder
	timeProvider TimeProvider
	logger       Logger

	regenerator    SlotRegenerator
	regenerateDays int
}

func NewService(
	scheduleRepo ScheduleRepository,
	txManager TransactionManager,
	recorder ActivityRecorder,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		txManager:    txManager,
		recorder:     recorder,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithAutoRegeneration regenerates [today, today+days) after every change.
// days <= 0 disables it.
func (s *Service) WithAutoRegeneration(regenerator SlotRegenerator, days int) *Service {
	s.regenerator = regenerator
	s.regenerateDays = days
	return s
}

func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Get returns the configuration of a facility. Public.
// The configuration and its child rows are read from one snapshot.
func (s *Service) Get(ctx context.Context, facilityID int64) (*models.ScheduleResponse, error) {
	var cfg *domain.ScheduleConfiguration
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		cfg, err = s.scheduleRepo.Get(txCtx, facilityID)
		return err
	})
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			s.logger.Warn("Get: facility=%d has no schedule", facilityID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("Get: repository error for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(cfg), nil
}

// Save creates or replaces the configuration. Nothing is written when validation fails.
func (s *Service) Save(ctx context.Context, req *models.SaveScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Save: facility=%d by actor=%d", req.FacilityID, req.ActorID)

	// 1. Parse and validate
	if req.FacilityID <= 0 {
		return nil, fmt.Errorf("%w: facilityId must be positive", ErrInvalidInput)
	}
	cfg, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("Save: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("Save: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cfg.SortSpecialDates()

	// 2. Upsert with child rows in one transaction
	var saved *domain.ScheduleConfiguration
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		saved, err = s.scheduleRepo.Save(txCtx, cfg)
		return err
	})
	if err != nil {
		s.logger.Error("Save: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: Save - repository error: %v", ErrInternal, err)
	}

	s.record(ctx, req.ActorID, domain.ActionScheduleSaved, req.FacilityID, "")
	regeneration := s.regenerate(ctx, req.FacilityID, req.ActorID)

	s.logger.Info("Save: facility=%d saved", req.FacilityID)
	resp := models.FromDomainSchedule(saved)
	resp.Regeneration = regeneration
	return resp, nil
}

// Update applies a partial change and validates the resulting configuration as a whole.
func (s *Service) Update(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: facility=%d by actor=%d", req.FacilityID, req.ActorID)

	var saved *domain.ScheduleConfiguration
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		cfg, err := s.scheduleRepo.Get(txCtx, req.FacilityID)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
				return ErrConfigNotFound
			}
			return fmt.Errorf("%w: Update - get configuration: %v", ErrInternal, err)
		}

		if err := req.ApplyToConfig(cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		cfg.SortSpecialDates()

		saved, err = s.scheduleRepo.Save(txCtx, cfg)
		if err != nil {
			return fmt.Errorf("%w: Update - save configuration: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logResult("Update", req.FacilityID, err)
		return nil, err
	}

	s.record(ctx, req.ActorID, domain.ActionScheduleUpdated, req.FacilityID, "")

	resp := models.FromDomainSchedule(saved)
	resp.Regeneration = s.regenerate(ctx, req.FacilityID, req.ActorID)
	return resp, nil
}

// AddSpecialDate adds one override and returns the updated configuration.
func (s *Service) AddSpecialDate(ctx context.Context, req *models.AddSpecialDateRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("AddSpecialDate: facility=%d date=%s closed=%t by actor=%d",
		req.FacilityID, req.Date, req.IsClosed, req.ActorID)

	sd, err := req.SpecialDate.ToDomain()
	if err == nil {
		err = sd.Validate()
	}
	if err != nil {
		s.logger.Warn("AddSpecialDate: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated *domain.ScheduleConfiguration
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.scheduleRepo.Get(txCtx, req.FacilityID); err != nil {
			if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
				return ErrConfigNotFound
			}
			return fmt.Errorf("%w: AddSpecialDate - get configuration: %v", ErrInternal, err)
		}

		if err := s.scheduleRepo.AddSpecialDate(txCtx, req.FacilityID, sd); err != nil {
			if errors.Is(err, scheduleRepo.ErrDuplicateSpecialDate) {
				return ErrDuplicateDate
			}
			return fmt.Errorf("%w: AddSpecialDate - insert: %v", ErrInternal, err)
		}

		updated, err = s.scheduleRepo.Get(txCtx, req.FacilityID)
		if err != nil {
			return fmt.Errorf("%w: AddSpecialDate - reload configuration: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logResult("AddSpecialDate", req.FacilityID, err)
		return nil, err
	}

	s.record(ctx, req.ActorID, domain.ActionSpecialDateAdded, req.FacilityID,
		fmt.Sprintf("%s closed=%t %s", req.Date, req.IsClosed, req.Reason))

	resp := models.FromDomainSchedule(updated)
	resp.Regeneration = s.regenerate(ctx, req.FacilityID, req.ActorID)
	return resp, nil
}

// RemoveSpecialDate deletes one override. A missing override is ErrSpecialDateNotFound.
func (s *Service) RemoveSpecialDate(ctx context.Context, req *models.RemoveSpecialDateRequest) (*models.RemoveSpecialDateResponse, error) {
	s.logger.Info("RemoveSpecialDate: facility=%d date=%s by actor=%d", req.FacilityID, req.Date, req.ActorID)

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, req.Date)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.scheduleRepo.RemoveSpecialDate(txCtx, req.FacilityID, date); err != nil {
			if errors.Is(err, scheduleRepo.ErrSpecialDateNotFound) {
				return ErrSpecialDateNotFound
			}
			return fmt.Errorf("%w: RemoveSpecialDate - delete: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logResult("RemoveSpecialDate", req.FacilityID, err)
		return nil, err
	}

	s.record(ctx, req.ActorID, domain.ActionSpecialDateRemoved, req.FacilityID, req.Date)

	return &models.RemoveSpecialDateResponse{
		FacilityID:   req.FacilityID,
		Date:         date.Format(domain.DateFormat),
		Regeneration: s.regenerate(ctx, req.FacilityID, req.ActorID),
	}, nil
}

// Helper methods

func (s *Service) record(ctx context.Context, actorID int64, action string, facilityID int64, detail string) {
	s.recorder.Record(ctx, domain.ActivityEvent{
		ActorID:    actorID,
		Action:     action,
		FacilityID: facilityID,
		Detail:     detail,
	})
}

// regenerate never fails the calling operation; the administrator can rerun update-slots.
// Returns nil when regeneration is disabled or failed.
func (s *Service) regenerate(ctx context.Context, facilityID, actorID int64) *models.RegenerationSummary {
	if s.regenerator == nil || s.regenerateDays <= 0 {
		return nil
	}

	start := domain.DateOnly(s.timeProvider.Now())
	req := &generate_slots.Request{
		FacilityID: facilityID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, s.regenerateDays-1),
		ActorID:    actorID,
	}
	resp, err := s.regenerator.Execute(ctx, req)
	if err != nil {
		s.logger.Warn("regenerate: facility=%d: %v", facilityID, err)
		return nil
	}

	s.logger.Info("regenerate: facility=%d created=%d deleted=%d preserved=%d",
		facilityID, resp.CreatedCount, resp.DeletedCount, len(resp.PreservedBooked))
	return models.FromRegeneration(req, resp)
}

func (s *Service) logResult(op string, facilityID int64, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: facility=%d: %v", op, facilityID, err)
		return
	}
	s.logger.Warn("%s: facility=%d: %v", op, facilityID, err)
}
