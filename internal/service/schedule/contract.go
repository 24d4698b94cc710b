package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
)

// ScheduleRepository stores one configuration per facility
type ScheduleRepository interface {
	Get(ctx context.Context, facilityID int64) (*domain.ScheduleConfiguration, error)
	Save(ctx context.Context, cfg *domain.ScheduleConfiguration) (*domain.ScheduleConfiguration, error)
	AddSpecialDate(ctx context.Context, facilityID int64, sd domain.SpecialDate) error
	RemoveSpecialDate(ctx context.Context, facilityID int64, date time.Time) error
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotRegenerator refreshes upcoming slots after the schedule changed
type SlotRegenerator interface {
	Execute(ctx context.Context, req *generate_slots.Request) (*generate_slots.Response, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent)
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
