package dbmetrics

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	ops    []string
	errors int
}

func (o *recordingObserver) ObserveDBQuery(operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, operation)
	if err != nil {
		o.errors++
	}
}

func (o *recordingObserver) SetDBStats(sql.DBStats) {}

func TestDB_ObservesQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	obs := &recordingObserver{}
	wrapped := Wrap(db, obs)

	mock.ExpectExec("UPDATE slots").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id FROM slots").WillReturnError(errors.New("boom"))

	_, err = wrapped.ExecContext(context.Background(), "UPDATE slots SET is_booked = true")
	require.NoError(t, err)

	_, err = wrapped.QueryContext(context.Background(), "SELECT id FROM slots")
	require.Error(t, err)

	assert.Equal(t, []string{"update", "select"}, obs.ops)
	assert.Equal(t, 1, obs.errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExecutor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := Wrap(db, nil)
	ctx := context.Background()

	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, wrapped, GetExecutor(ctx, wrapped))

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := wrapped.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.True(t, CanLockRows(txCtx))
	assert.Equal(t, tx, GetExecutor(txCtx, wrapped))

	roCtx := WithReadOnlyTx(ctx, tx)
	assert.True(t, IsInTransaction(roCtx))
	assert.False(t, CanLockRows(roCtx))
	assert.Equal(t, tx, GetExecutor(roCtx, wrapped))
	assert.False(t, CanLockRows(ctx))

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "insert", operationOf("  INSERT INTO slots (a) VALUES ($1)"))
	assert.Equal(t, "unknown", operationOf(""))
}
