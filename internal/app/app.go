package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-PoolScheduleService/internal/config"
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/lock"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/migrator"
	appointmentRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/appointment"
	scheduleRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/schedule"
	slotRepo "github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-PoolScheduleService/internal/integrations/activitylog"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule"
	bookSlotUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/book_slot"
	generateSlotsUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
	getAvailableSlotsUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-PoolScheduleService/internal/worker/sweeper"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/dbmetrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/txmanager"
)

const regenLockPrefix = "pool:regen:"

type activityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent)
}

// App owns the connections and the wired services shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	DB       *sql.DB

	Schedule       *schedule.Service
	Appointments   *appointments.Service
	GenerateSlots  *generateSlotsUC.UseCase
	BookSlot       *bookSlotUC.UseCase
	AvailableSlots *getAvailableSlotsUC.UseCase
	Sweeper        *sweeper.Sweeper

	redis       *redis.Client
	activity    *activitylog.Client
	stopMetrics chan struct{}
}

// New connects to PostgreSQL (and Redis when enabled) and wires every component.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:      cfg,
		Logger:      log,
		stopMetrics: make(chan struct{}),
	}

	// Metrics
	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.Metrics = metrics.New(cfg.Metrics.ServiceName, a.Registry)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Database
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	a.DB = db

	if err := db.PingContext(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := a.Migrate(); err != nil {
			a.Close()
			return nil, err
		}
	}

	var wrappedDB *dbmetrics.DB
	if a.Metrics != nil {
		wrappedDB = dbmetrics.WrapWithDefault(db, a.Metrics, a.stopMetrics)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// Regeneration lock
	var locker generateSlotsUC.Locker
	if cfg.Redis.Enabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			// regeneration falls back to running unlocked while Redis is down
			log.Warn("Redis ping failed (addr=%s): %v", cfg.Redis.Addr, err)
		}
		locker = lock.NewRedisLocker(a.redis, regenLockPrefix, time.Duration(cfg.Redis.LockTTL)*time.Second)
		log.Info("Regeneration lock backed by Redis at %s", cfg.Redis.Addr)
	} else {
		locker = lock.NewLocalLocker()
		log.Info("Regeneration lock is in-process")
	}

	// Activity log
	var recorder activityRecorder = activitylog.NopRecorder{}
	if cfg.ActivityLog.Enabled {
		a.activity = activitylog.NewClient(cfg.ActivityLog.URL, time.Duration(cfg.ActivityLog.Timeout)*time.Second, log)
		recorder = a.activity
		log.Info("Activity log enabled (url=%s, timeout=%ds)", cfg.ActivityLog.URL, cfg.ActivityLog.Timeout)
	}

	// Repositories
	schedules := scheduleRepo.NewRepository(wrappedDB)
	slots := slotRepo.NewRepository(wrappedDB)
	appointmentsRepo := appointmentRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Use cases
	a.GenerateSlots = generateSlotsUC.NewUseCase(
		schedules,
		slots,
		txMgr,
		locker,
		recorder,
		a.Metrics,
		log,
		cfg.Slots.MaxGenerationDays,
	)
	a.BookSlot = bookSlotUC.NewUseCase(
		slots,
		appointmentsRepo,
		txMgr,
		recorder,
		a.Metrics,
		log,
	)
	a.AvailableSlots = getAvailableSlotsUC.NewUseCase(slots, log)

	// Services
	a.Schedule = schedule.NewService(schedules, txMgr, recorder, log)
	if cfg.Slots.AutoRegenerateDays > 0 {
		a.Schedule.WithAutoRegeneration(a.GenerateSlots, cfg.Slots.AutoRegenerateDays)
	}
	a.Appointments = appointments.NewService(
		appointmentsRepo,
		slots,
		txMgr,
		recorder,
		a.Metrics,
		log,
	)

	// Background
	a.Sweeper = sweeper.New(sweeper.Config{
		Location:      cfg.Sweeper.Location(),
		DailyHour:     cfg.Sweeper.DailyHour,
		DailyMinute:   cfg.Sweeper.DailyMinute,
		CheckInterval: time.Duration(cfg.Sweeper.CheckInterval) * time.Second,
	}, a.Appointments, log)

	return a, nil
}

// Migrate applies the embedded schema
func (a *App) Migrate() error {
	m, err := migrator.New(a.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.Logger.Warn("Migrator close: %v", err)
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	a.Logger.Info("Database schema at version %d (dirty=%t)", version, dirty)
	return nil
}

func (a *App) RouterDeps() RouterDeps {
	deps := RouterDeps{
		Schedule:       a.Schedule,
		Appointments:   a.Appointments,
		GenerateSlots:  a.GenerateSlots,
		BookSlot:       a.BookSlot,
		AvailableSlots: a.AvailableSlots,
		Logger:         a.Logger,
		RateLimit:      a.Config.RateLimit,
		MetricsPath:    a.Config.Metrics.Path,
		Health:         a.DB.PingContext,
	}
	if a.Metrics != nil {
		deps.Metrics = a.Metrics
		deps.Gatherer = a.Registry
	}
	return deps
}

// Close waits for in-flight activity events, then releases connections.
func (a *App) Close() {
	close(a.stopMetrics)

	if a.activity != nil {
		a.activity.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn("Redis close: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("Database close: %v", err)
		}
	}
}
