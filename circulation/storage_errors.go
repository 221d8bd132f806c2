package circulation

import (
	"errors"
)

// Sentinels returned by storage engines. They are defined here so callers can
// classify storage failures without importing an engine package.
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrInvalidTablePrefix = errors.New("invalid table prefix supplied")
var ErrBuildingQueryFailed = errors.New("building sql query failed")
var ErrQueryingDataFailed = errors.New("querying circulation data failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrExecutingStatementFailed = errors.New("executing sql statement failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")
var ErrBeginningTransactionFailed = errors.New("beginning transaction failed")
var ErrCommittingTransactionFailed = errors.New("committing transaction failed")
var ErrBuildingJournalEntryFailed = errors.New("building journal entry from database row failed")
var ErrMigratingSchemaFailed = errors.New("migrating schema failed")
