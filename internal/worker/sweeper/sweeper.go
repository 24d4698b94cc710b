package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

// NoShowMarker is implemented by the appointments service
type NoShowMarker interface {
	MarkNoShow(ctx context.Context, date time.Time, actorID int64) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config holds the daily schedule of the sweep.
type Config struct {
	Location      *time.Location
	DailyHour     int
	DailyMinute   int
	CheckInterval time.Duration
}

// Sweeper marks yesterday's unconfirmed appointments as no-show once a day.
type Sweeper struct {
	config Config
	marker NoShowMarker
	logger Logger
	now    func() time.Time

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of last run
	running     bool
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func New(config Config, marker NoShowMarker, logger Logger) *Sweeper {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}

	return &Sweeper{
		config: config,
		marker: marker,
		logger: logger,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("sweeper: started, daily at %02d:%02d %s",
		s.config.DailyHour, s.config.DailyMinute, s.config.Location)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper: stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info("sweeper: stopped")
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// Stop ends Start. A Start called after Stop returns immediately.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.stopCh)
	})
}

// RunNow sweeps the day before now regardless of the schedule.
func (s *Sweeper) RunNow(ctx context.Context) (int, error) {
	return s.sweep(ctx, s.now().In(s.config.Location))
}

// checkAndRun sweeps once per day after the configured time has passed,
// so a tick that misses the exact minute still runs. A failed sweep is
// retried on the next tick of the same day.
func (s *Sweeper) checkAndRun(ctx context.Context) {
	now := s.now().In(s.config.Location)
	today := now.Format(domain.DateFormat)

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	scheduled := time.Date(now.Year(), now.Month(), now.Day(),
		s.config.DailyHour, s.config.DailyMinute, 0, 0, s.config.Location)
	if now.Before(scheduled) {
		return
	}

	if _, err := s.sweep(ctx, now); err != nil {
		s.logger.Error("sweeper: daily run failed, retrying on next check: %v", err)
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) (int, error) {
	yesterday := domain.DateOnly(now.AddDate(0, 0, -1))
	start := time.Now()

	marked, err := s.marker.MarkNoShow(ctx, yesterday, domain.SystemActor.ID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("sweeper: date=%s marked=%d in %s",
		yesterday.Format(domain.DateFormat), marked, time.Since(start))
	return marked, nil
}
