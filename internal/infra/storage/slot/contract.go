package slot

import "github.com/m04kA/SMC-PoolScheduleService/pkg/dbmetrics"

// DBExecutor is satisfied by *sql.DB, *dbmetrics.DB and open transactions.
// A transaction stored in the context by the transaction manager takes precedence.
type DBExecutor = dbmetrics.DBExecutor
