package add_special_date

import (
	"context"

	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule/models"
)

type ScheduleService interface {
	AddSpecialDate(ctx context.Context, req *models.AddSpecialDateRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
