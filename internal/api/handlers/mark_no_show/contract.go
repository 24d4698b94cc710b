package mark_no_show

import (
	"context"
	"time"
)

type NoShowMarker interface {
	MarkNoShow(ctx context.Context, date time.Time, actorID int64) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
