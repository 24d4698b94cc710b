package generate_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

// ScheduleRepository reads the configuration the slots are derived from
type ScheduleRepository interface {
	Get(ctx context.Context, facilityID int64) (*domain.ScheduleConfiguration, error)
}

type SlotRepository interface {
	ListByRange(ctx context.Context, facilityID int64, start, end time.Time) ([]*domain.Slot, error)
	CreateBatch(ctx context.Context, slots []*domain.Slot) (int, error)
	DeleteUnbooked(ctx context.Context, ids []int64) (int, error)
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes regeneration runs per facility.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent)
}

type Metrics interface {
	AddSlotChanges(facilityID int64, created, deleted int)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
