package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/dbmetrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/psqlbuilder"
)

const (
	tableConfigs      = "schedule_configs"
	tableSpecialDates = "schedule_special_dates"
	tableTimeSlots    = "schedule_time_slots"
)

// Repository stores schedule configurations across three tables: the weekly
// pattern, special-date overrides and the time-slot template.
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get loads the full configuration of a facility.
// Inside a writable transaction the configuration row is locked with FOR UPDATE.
func (r *Repository) Get(ctx context.Context, facilityID int64) (*domain.ScheduleConfiguration, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"facility_id",
		"day_off",
		"work_start",
		"work_end",
		"default_employee_id",
		"created_at",
		"updated_at",
	).
		From(tableConfigs).
		Where(squirrel.Eq{"facility_id": facilityID})

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		cfg                  domain.ScheduleConfiguration
		dayOff               string
		defaultEmployeeID    sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.FacilityID,
		&dayOff,
		&cfg.WorkHours.Start,
		&cfg.WorkHours.End,
		&defaultEmployeeID,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan config: %v", ErrScanRow, err)
	}

	cfg.DayOff, err = domain.ParseWeekday(dayOff)
	if err != nil {
		return nil, fmt.Errorf("%w: Get - stored day_off: %v", ErrScanRow, err)
	}
	if defaultEmployeeID.Valid {
		id := defaultEmployeeID.Int64
		cfg.DefaultEmployeeID = &id
	}
	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	if cfg.SpecialDates, err = r.listSpecialDates(ctx, executor, facilityID); err != nil {
		return nil, err
	}
	if cfg.TimeSlotTemplate, err = r.listTemplate(ctx, executor, facilityID); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save upserts the configuration and replaces its special dates and template.
// Callers run it inside a transaction so that a failure leaves no partial write.
func (r *Repository) Save(ctx context.Context, cfg *domain.ScheduleConfiguration) (*domain.ScheduleConfiguration, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableConfigs).
		Columns("facility_id", "day_off", "work_start", "work_end", "default_employee_id").
		Values(cfg.FacilityID, cfg.DayOff.String(), cfg.WorkHours.Start, cfg.WorkHours.End, cfg.DefaultEmployeeID).
		Suffix(`ON CONFLICT (facility_id) DO UPDATE SET
			day_off = EXCLUDED.day_off,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			default_employee_id = EXCLUDED.default_employee_id,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Save - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Save - execute upsert: %v", ErrExecQuery, err)
	}
	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	if err := r.replaceSpecialDates(ctx, executor, cfg.FacilityID, cfg.SpecialDates); err != nil {
		return nil, err
	}
	if err := r.replaceTemplate(ctx, executor, cfg.FacilityID, cfg.TimeSlotTemplate); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AddSpecialDate inserts one override. An existing override for the date yields ErrDuplicateSpecialDate.
func (r *Repository) AddSpecialDate(ctx context.Context, facilityID int64, sd domain.SpecialDate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSpecialDates).
		Columns("facility_id", "date", "reason", "is_closed").
		Values(facilityID, sd.Date.Format(domain.DateFormat), sd.Reason, sd.IsClosed).
		Suffix("ON CONFLICT (facility_id, date) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddSpecialDate - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AddSpecialDate - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AddSpecialDate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrDuplicateSpecialDate
	}

	return r.touch(ctx, executor, facilityID)
}

// RemoveSpecialDate deletes the override for date or returns ErrSpecialDateNotFound.
func (r *Repository) RemoveSpecialDate(ctx context.Context, facilityID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableSpecialDates).
		Where(squirrel.Eq{"facility_id": facilityID, "date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: RemoveSpecialDate - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RemoveSpecialDate - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RemoveSpecialDate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSpecialDateNotFound
	}

	return r.touch(ctx, executor, facilityID)
}

// Helper methods

func (r *Repository) touch(ctx context.Context, executor DBExecutor, facilityID int64) error {
	query, args, err := psqlbuilder.Update(tableConfigs).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"facility_id": facilityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: touch - build update query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: touch - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) listSpecialDates(ctx context.Context, executor DBExecutor, facilityID int64) ([]domain.SpecialDate, error) {
	query, args, err := psqlbuilder.Select("date", "reason", "is_closed").
		From(tableSpecialDates).
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listSpecialDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listSpecialDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]domain.SpecialDate, 0)
	for rows.Next() {
		var sd domain.SpecialDate
		if err := rows.Scan(&sd.Date, &sd.Reason, &sd.IsClosed); err != nil {
			return nil, fmt.Errorf("%w: listSpecialDates - scan row: %v", ErrScanRow, err)
		}
		sd.Date = domain.DateOnly(sd.Date)
		dates = append(dates, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listSpecialDates - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}

func (r *Repository) listTemplate(ctx context.Context, executor DBExecutor, facilityID int64) ([]domain.TemplateEntry, error) {
	query, args, err := psqlbuilder.Select("time", "is_active").
		From(tableTimeSlots).
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listTemplate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listTemplate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]domain.TemplateEntry, 0)
	for rows.Next() {
		var entry domain.TemplateEntry
		if err := rows.Scan(&entry.Time, &entry.IsActive); err != nil {
			return nil, fmt.Errorf("%w: listTemplate - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listTemplate - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}

func (r *Repository) replaceSpecialDates(ctx context.Context, executor DBExecutor, facilityID int64, dates []domain.SpecialDate) error {
	query, args, err := psqlbuilder.Delete(tableSpecialDates).
		Where(squirrel.Eq{"facility_id": facilityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceSpecialDates - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: replaceSpecialDates - execute delete: %v", ErrExecQuery, err)
	}

	if len(dates) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert(tableSpecialDates).Columns("facility_id", "date", "reason", "is_closed")
	for _, sd := range dates {
		insert = insert.Values(facilityID, sd.Date.Format(domain.DateFormat), sd.Reason, sd.IsClosed)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceSpecialDates - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: replaceSpecialDates - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) replaceTemplate(ctx context.Context, executor DBExecutor, facilityID int64, entries []domain.TemplateEntry) error {
	query, args, err := psqlbuilder.Delete(tableTimeSlots).
		Where(squirrel.Eq{"facility_id": facilityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceTemplate - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: replaceTemplate - execute delete: %v", ErrExecQuery, err)
	}

	if len(entries) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert(tableTimeSlots).Columns("facility_id", "position", "time", "is_active")
	for i, entry := range entries {
		insert = insert.Values(facilityID, i, entry.Time, entry.IsActive)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceTemplate - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: replaceTemplate - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
