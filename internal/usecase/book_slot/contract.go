package book_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

type SlotRepository interface {
	TryBook(ctx context.Context, key domain.SlotKey) (*domain.Slot, error)
	AttachAppointment(ctx context.Context, slotID, appointmentID int64) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
}

// TransactionManager runs the slot flip and the appointment insert atomically
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent)
}

type Metrics interface {
	IncBooking(outcome string)
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
