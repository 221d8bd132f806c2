package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/circulation/postgresengine/internal/adapters"
)

const (
	tableMembersBase      = "members"
	tableBooksBase        = "books"
	tableLoanPoliciesBase = "loan_policies"
	tableLoansBase        = "loans"
	tableFinesBase        = "fines"
	tableReservationsBase = "reservations"
	tableJournalBase      = "circulation_journal"
	tableMigrationsBase   = "schema_migrations"

	logMsgBuildQueryFailed      = "failed to build sql query"
	logMsgDBQueryFailed         = "database query execution failed"
	logMsgCloseRowsFailed       = "failed to close database rows"
	logMsgScanRowFailed         = "failed to scan database row"
	logMsgDBExecFailed          = "database statement execution failed"
	logMsgRowsAffectedFailed    = "failed to get rows affected count"
	logMsgUnexpectedRowCount    = "statement affected an unexpected number of rows"
	logMsgBeginTxFailed         = "failed to begin transaction"
	logMsgCommitTxFailed        = "failed to commit transaction"
	logMsgConcurrencyConflict   = "concurrency conflict detected"
	logMsgIssuedCountClamped    = "member issued count clamped at zero during return"
	logMsgBuildJournalRowFailed = "failed to build journal entry from database row"
	logMsgSQLExecuted           = "executed sql for: "
	logMsgOperation             = "circulation operation: "
	logMsgSnapshotLoaded        = "snapshot loaded"
	logMsgLoanDetailsLoaded     = "loan details loaded"
	logMsgJournalTailLoaded     = "journal entries loaded"

	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrDurationMS      = "duration_ms"
	logAttrTable           = "table"
	logAttrRowID           = "row_id"
	logAttrRowsAffected    = "rows_affected"
	logAttrRowCount        = "row_count"
	logAttrExpectedVersion = "expected_version"
	logAttrActualVersion   = "actual_version"
	logAttrSnapshot        = "snapshot"
	logAttrLoanID          = "loan_id"
	logAttrMemberID        = "member_id"
	logAttrBookID          = "book_id"
	logAttrFineID          = "fine_id"
	logAttrSchemaVersion   = "schema_version"

	logActionLoad         = "load"
	logActionGuard        = "guard"
	logActionMutate       = "mutate"
	logActionJournal      = "journal"
	logActionMigrate      = "migrate"
	logActionLoanIssued   = "loan issued"
	logActionLoanReturned = "loan returned"
	logActionLoanRenewed  = "loan renewed"
	logActionFinePaid     = "fine paid"

	snapshotIssue   = "issue"
	snapshotReturn  = "return"
	snapshotRenew   = "renew"
	snapshotPayFine = "pay_fine"

	colID               = "id"
	colVersion          = "version"
	colCreatedAt        = "created_at"
	colUpdatedAt        = "updated_at"
	colName             = "name"
	colEmail            = "email"
	colMembershipClass  = "membership_class"
	colStatus           = "status"
	colIssuedCount      = "issued_count"
	colOutstandingFines = "outstanding_fines"
	colTitle            = "title"
	colAuthor           = "author"
	colISBN             = "isbn"
	colTotalCopies      = "total_copies"
	colAvailableCopies  = "available_copies"
	colReplacementPrice = "replacement_price"
	colIsDeleted        = "is_deleted"
	colMemberID         = "member_id"
	colBookID           = "book_id"
	colLoanID           = "loan_id"
	colIssuedAt         = "issued_at"
	colDueDate          = "due_date"
	colReturnedAt       = "returned_at"
	colRenewalCount     = "renewal_count"
	colFineAmount       = "fine_amount"
	colIssuedBy         = "issued_by"
	colReturnedBy       = "returned_by"
	colCategory         = "category"
	colAmount           = "amount"
	colAmountPaid       = "amount_paid"
	colDescription      = "description"
	colMaxBooks         = "max_books"
	colLoanDurationDays = "loan_duration_days"
	colRenewalLimit     = "renewal_limit"
	colFinePerDay       = "fine_per_day"
	colGracePeriodDays  = "grace_period_days"
	colEntryType        = "entry_type"
	colOccurredAt       = "occurred_at"
	colPayload          = "payload"

	dialectPostgres = "postgres"
	castJsonb       = "?::jsonb"

	exprVersionBump                = "version + 1"
	exprAvailableCopiesUp          = "available_copies + 1"
	exprAvailableCopiesDown        = "available_copies - 1"
	exprIssuedCountUp              = "issued_count + 1"
	exprIssuedCountDownClamped     = "GREATEST(issued_count - 1, 0)"
	exprOutstandingFinesAdd        = "outstanding_fines + ?"
	exprOutstandingFinesSubClamped = "GREATEST(outstanding_fines - ?, 0)"

	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeUniqueViolation      = "23505"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// Logger interface for SQL query logging, operational metrics, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging. Log lines carry the
// calling context so a logging backend can correlate them with active traces.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// CirculationStore is the PostgreSQL storage engine behind the circulation
// command and query handlers. It loads decision snapshots, applies decision
// plans under row-version guards, and serves the loan detail projections.
type CirculationStore struct {
	db               adapters.DBAdapter
	tablePrefix      string
	logger           Logger
	contextualLogger ContextualLogger
}

// Option defines a functional option for configuring a CirculationStore.
type Option func(*CirculationStore) error

// WithTablePrefix namespaces every circulation table with the given prefix.
// The prefix must be empty or a valid identifier fragment: lowercase letters,
// digits, and underscores, not starting with a digit.
func WithTablePrefix(prefix string) Option {
	return func(cs *CirculationStore) error {
		if !isValidTablePrefix(prefix) {
			return circulation.ErrInvalidTablePrefix
		}

		cs.tablePrefix = prefix

		return nil
	}
}

// WithLogger sets the logger for the CirculationStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Operation outcomes, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like the defensive issued-count clamp firing
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(cs *CirculationStore) error {
		cs.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the CirculationStore.
// It receives the same messages as the plain logger with the operation's
// context attached. Both loggers may be configured at once.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(cs *CirculationStore) error {
		cs.contextualLogger = logger
		return nil
	}
}

// NewCirculationStoreFromPGXPool creates a new CirculationStore using a pgx Pool with optional configuration.
func NewCirculationStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (CirculationStore, error) {
	if db == nil {
		return CirculationStore{}, circulation.ErrNilDatabaseConnection
	}

	cs := CirculationStore{db: adapters.NewPGXAdapter(db)}

	for _, option := range options {
		if err := option(&cs); err != nil {
			return CirculationStore{}, err
		}
	}

	return cs, nil
}

// NewCirculationStoreFromPGXPoolAndReplica creates a new CirculationStore that
// executes transactions and strongly consistent reads on the primary pool and
// routes reads requesting eventual consistency to the replica pool.
func NewCirculationStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (CirculationStore, error) {
	if primary == nil || replica == nil {
		return CirculationStore{}, circulation.ErrNilDatabaseConnection
	}

	cs := CirculationStore{db: adapters.NewPGXAdapterWithReplica(primary, replica)}

	for _, option := range options {
		if err := option(&cs); err != nil {
			return CirculationStore{}, err
		}
	}

	return cs, nil
}

// NewCirculationStoreFromSQLDB creates a new CirculationStore using a sql.DB with optional configuration.
func NewCirculationStoreFromSQLDB(db *sql.DB, options ...Option) (CirculationStore, error) {
	if db == nil {
		return CirculationStore{}, circulation.ErrNilDatabaseConnection
	}

	cs := CirculationStore{db: adapters.NewSQLAdapter(db)}

	for _, option := range options {
		if err := option(&cs); err != nil {
			return CirculationStore{}, err
		}
	}

	return cs, nil
}

// NewCirculationStoreFromSQLX creates a new CirculationStore using a sqlx.DB with optional configuration.
func NewCirculationStoreFromSQLX(db *sqlx.DB, options ...Option) (CirculationStore, error) {
	if db == nil {
		return CirculationStore{}, circulation.ErrNilDatabaseConnection
	}

	cs := CirculationStore{db: adapters.NewSQLXAdapter(db)}

	for _, option := range options {
		if err := option(&cs); err != nil {
			return CirculationStore{}, err
		}
	}

	return cs, nil
}

func (cs CirculationStore) membersTable() string      { return cs.tablePrefix + tableMembersBase }
func (cs CirculationStore) booksTable() string        { return cs.tablePrefix + tableBooksBase }
func (cs CirculationStore) loanPoliciesTable() string { return cs.tablePrefix + tableLoanPoliciesBase }
func (cs CirculationStore) loansTable() string        { return cs.tablePrefix + tableLoansBase }
func (cs CirculationStore) finesTable() string        { return cs.tablePrefix + tableFinesBase }
func (cs CirculationStore) reservationsTable() string { return cs.tablePrefix + tableReservationsBase }
func (cs CirculationStore) journalTable() string      { return cs.tablePrefix + tableJournalBase }
func (cs CirculationStore) migrationsTable() string   { return cs.tablePrefix + tableMigrationsBase }

// guardTable maps a plan's guard table to its physical, prefixed name.
func (cs CirculationStore) guardTable(table core.GuardTable) string {
	return cs.tablePrefix + string(table)
}

func isValidTablePrefix(prefix string) bool {
	for i, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// executeQuery executes the SQL query and returns rows with timing information.
func (cs CirculationStore) executeQuery(ctx context.Context, sqlQuery sqlQueryString, action string) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := cs.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	cs.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		cs.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(circulation.ErrQueryingDataFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (cs CirculationStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if cs.logger != nil {
			cs.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (cs CirculationStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery sqlQueryString,
	action string,
	duration queryDuration,
) {

	if cs.logger != nil {
		cs.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, cs.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if cs.contextualLogger != nil {
		cs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, cs.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (cs CirculationStore) logOperation(ctx context.Context, action string, args ...any) {
	if cs.logger != nil {
		cs.logger.Info(logMsgOperation+action, args...)
	}

	if cs.contextualLogger != nil {
		cs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs a warning to the configured loggers.
func (cs CirculationStore) logWarn(ctx context.Context, msg string, args ...any) {
	if cs.logger != nil {
		cs.logger.Warn(msg, args...)
	}

	if cs.contextualLogger != nil {
		cs.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

// logError logs a failure with its error attached to the configured loggers.
func (cs CirculationStore) logError(ctx context.Context, msg string, err error, args ...any) {
	if cs.logger == nil && cs.contextualLogger == nil {
		return
	}

	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if cs.logger != nil {
		cs.logger.Error(msg, allArgs...)
	}

	if cs.contextualLogger != nil {
		cs.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (cs CirculationStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
