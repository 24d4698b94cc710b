package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

type SlotRepository interface {
	// ListAvailable returns free slots of the facility, for one date or from `from` onwards
	ListAvailable(ctx context.Context, facilityID int64, date *time.Time, from time.Time) ([]*domain.Slot, error)
}

// TimeProvider is replaced in tests
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
