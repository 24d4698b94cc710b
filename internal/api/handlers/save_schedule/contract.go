package save_schedule

import (
	"context"

	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule/models"
)

type ScheduleService interface {
	Save(ctx context.Context, req *models.SaveScheduleRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
