package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/dbmetrics"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/psqlbuilder"
)

const tableSlots = "slots"

// PostgreSQL accepts at most 65535 bind parameters per statement.
const (
	insertBatchSize = 1000
	deleteBatchSize = 5000
)

var slotColumns = []string{
	"id",
	"facility_id",
	"date",
	"time",
	"is_booked",
	"employee_id",
	"appointment_id",
	"created_at",
	"updated_at",
}

// Repository stores materialized slots. Booking state changes only through
// conditional updates so concurrent callers cannot both win a slot.
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByKey returns the slot at (facility, date, time).
func (r *Repository) GetByKey(ctx context.Context, key domain.SlotKey) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(keyPredicate(key)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListByRange returns every slot of the facility with start <= date <= end.
// Inside a writable transaction the rows are locked with FOR UPDATE.
func (r *Repository) ListByRange(ctx context.Context, facilityID int64, start, end time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.GtOrEq{"date": start.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"date": end.Format(domain.DateFormat)}).
		OrderBy("date ASC", "time ASC")

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// ListAvailable returns free slots of the facility ordered by date and time.
// A nil date lists every free slot from `from` onwards.
func (r *Repository) ListAvailable(ctx context.Context, facilityID int64, date *time.Time, from time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"facility_id": facilityID, "is_booked": false}).
		OrderBy("date ASC", "time ASC")

	if date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"date": date.Format(domain.DateFormat)})
	} else if !from.IsZero() {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// CreateBatch inserts slots, skipping keys that already exist.
// Returns the number of rows actually inserted.
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.Slot) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	total := 0
	for start := 0; start < len(slots); start += insertBatchSize {
		end := min(start+insertBatchSize, len(slots))

		insert := psqlbuilder.Insert(tableSlots).Columns("facility_id", "date", "time", "is_booked", "employee_id")
		for _, s := range slots[start:end] {
			insert = insert.Values(s.FacilityID, s.Date.Format(domain.DateFormat), s.Time, false, s.EmployeeID)
		}

		query, args, err := insert.Suffix("ON CONFLICT (facility_id, date, time) DO NOTHING").ToSql()
		if err != nil {
			return total, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("%w: CreateBatch - get rows affected: %v", ErrExecQuery, err)
		}
		total += int(rowsAffected)
	}

	return total, nil
}

// DeleteUnbooked removes the given slots unless they are booked by the time the
// statement runs. Returns the number of rows deleted.
func (r *Repository) DeleteUnbooked(ctx context.Context, ids []int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	total := 0
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))

		query, args, err := psqlbuilder.Delete(tableSlots).
			Where(squirrel.Eq{"id": ids[start:end]}).
			Where(squirrel.Eq{"is_booked": false}).
			ToSql()
		if err != nil {
			return total, fmt.Errorf("%w: DeleteUnbooked - build delete query: %v", ErrBuildQuery, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("%w: DeleteUnbooked - execute delete: %v", ErrExecQuery, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("%w: DeleteUnbooked - get rows affected: %v", ErrExecQuery, err)
		}
		total += int(rowsAffected)
	}

	return total, nil
}

// TryBook flips a free slot to booked in a single conditional UPDATE.
// Returns ErrSlotAlreadyBooked when the slot exists but was taken and
// ErrSlotNotFound when it does not exist.
func (r *Repository) TryBook(ctx context.Context, key domain.SlotKey) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("is_booked", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(keyPredicate(key)).
		Where(squirrel.Eq{"is_booked": false}).
		Suffix("RETURNING " + strings.Join(slotColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: TryBook - build update query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByKey(ctx, key); getErr != nil {
			return nil, getErr
		}
		return nil, ErrSlotAlreadyBooked
	}
	if err != nil {
		return nil, fmt.Errorf("%w: TryBook - execute update: %v", ErrExecQuery, err)
	}

	return slot, nil
}

// AttachAppointment records the appointment occupying a booked slot.
func (r *Repository) AttachAppointment(ctx context.Context, slotID, appointmentID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("appointment_id", appointmentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID, "is_booked": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AttachAppointment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AttachAppointment - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AttachAppointment - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// Release frees the slot held by appointmentID. It reports false when no slot
// is held by that appointment, which happens when the slot was pruned.
func (r *Repository) Release(ctx context.Context, key domain.SlotKey, appointmentID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("is_booked", false).
		Set("appointment_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(keyPredicate(key)).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// Helper methods

func keyPredicate(key domain.SlotKey) squirrel.Eq {
	return squirrel.Eq{
		"facility_id": key.FacilityID,
		"date":        key.Date.Format(domain.DateFormat),
		"time":        key.Time,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		s                    domain.Slot
		employeeID           sql.NullInt64
		appointmentID        sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.FacilityID,
		&s.Date,
		&s.Time,
		&s.IsBooked,
		&employeeID,
		&appointmentID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Date = domain.DateOnly(s.Date)
	if employeeID.Valid {
		id := employeeID.Int64
		s.EmployeeID = &id
	}
	if appointmentID.Valid {
		id := appointmentID.Int64
		s.AppointmentID = &id
	}
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

func scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrScanRow, err)
	}
	return slots, nil
}
