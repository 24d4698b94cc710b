package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	Confirm(ctx context.Context, id int64) error
	MarkNoShow(ctx context.Context, date time.Time) (int, error)
}

// SlotRepository frees the slot of a canceled appointment
type SlotRepository interface {
	Release(ctx context.Context, key domain.SlotKey, appointmentID int64) (bool, error)
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent)
}

type Metrics interface {
	AddNoShows(n int)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
