package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/openshelf/circulation-engine-go/circulation"
)

const latestSchemaVersion = 1

const (
	logMsgSchemaMigrated  = "schema migrated"
	logMsgPoliciesSeeded  = "default loan policies seeded"
	logMsgSchemaUpToDate  = "schema already up to date"
	logAttrPoliciesSeeded = "policies_seeded"
)

// CreateSchema brings the circulation schema up to the latest version. Each
// pending migration runs in its own transaction, one statement at a time, and
// records its version so re-running is a no-op. Statements use IF NOT EXISTS
// so a half-applied migration from an older, unversioned deployment converges
// instead of failing.
func (cs CirculationStore) CreateSchema(ctx context.Context) error {
	if err := cs.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	current, currentErr := cs.currentSchemaVersion(ctx)
	if currentErr != nil {
		return currentErr
	}

	if current >= latestSchemaVersion {
		cs.logOperation(ctx, logMsgSchemaUpToDate, logAttrSchemaVersion, current)
		return nil
	}

	for version := current + 1; version <= latestSchemaVersion; version++ {
		if err := cs.applySchemaMigration(ctx, version); err != nil {
			return err
		}
	}

	return nil
}

// SeedDefaultPolicies inserts the built-in loan policies, skipping classes
// that already have one configured.
func (cs CirculationStore) SeedDefaultPolicies(ctx context.Context) error {
	sqlQuery, buildErr := cs.buildSeedPoliciesSQL()
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return buildErr
	}

	result, execErr := cs.db.Exec(ctx, sqlQuery)
	if execErr != nil {
		cs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return errors.Join(circulation.ErrExecutingStatementFailed, execErr)
	}

	seeded, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		cs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return errors.Join(circulation.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	cs.logOperation(ctx, logMsgPoliciesSeeded, logAttrPoliciesSeeded, seeded)

	return nil
}

func (cs CirculationStore) ensureMigrationsTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, cs.migrationsTable())

	if _, execErr := cs.db.Exec(ctx, ddl); execErr != nil {
		cs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, ddl)
		return errors.Join(circulation.ErrMigratingSchemaFailed, execErr)
	}

	return nil
}

func (cs CirculationStore) currentSchemaVersion(ctx context.Context) (int, error) {
	sqlQuery := fmt.Sprintf(`SELECT MAX(version) FROM %s`, cs.migrationsTable())

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionMigrate)
	if queryErr != nil {
		return 0, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return 0, nil
	}

	var version sql.NullInt64
	if scanErr := rows.Scan(&version); scanErr != nil {
		cs.logError(ctx, logMsgScanRowFailed, scanErr, logAttrTable, cs.migrationsTable())
		return 0, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	if !version.Valid {
		return 0, nil
	}

	return int(version.Int64), nil
}

func (cs CirculationStore) applySchemaMigration(ctx context.Context, version int) error {
	statements, known := cs.migrationStatements(version)
	if !known {
		return errors.Join(circulation.ErrMigratingSchemaFailed, fmt.Errorf("unknown schema version: %d", version))
	}

	tx, beginErr := cs.db.BeginTx(ctx)
	if beginErr != nil {
		cs.logError(ctx, logMsgBeginTxFailed, beginErr)
		return errors.Join(circulation.ErrBeginningTransactionFailed, beginErr)
	}
	defer cs.rollback(ctx, tx)

	for _, statement := range statements {
		if _, execErr := tx.Exec(ctx, statement); execErr != nil {
			cs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return errors.Join(circulation.ErrMigratingSchemaFailed, execErr)
		}
	}

	recordVersion := fmt.Sprintf(`INSERT INTO %s (version) VALUES (%d)`, cs.migrationsTable(), version)
	if _, execErr := tx.Exec(ctx, recordVersion); execErr != nil {
		cs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, recordVersion)
		return errors.Join(circulation.ErrMigratingSchemaFailed, execErr)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		cs.logError(ctx, logMsgCommitTxFailed, commitErr)
		return errors.Join(circulation.ErrCommittingTransactionFailed, commitErr)
	}

	cs.logOperation(ctx, logMsgSchemaMigrated, logAttrSchemaVersion, version)

	return nil
}

func (cs CirculationStore) migrationStatements(version int) ([]string, bool) {
	switch version {
	case 1:
		return cs.schemaV1Statements(), true
	default:
		return nil, false
	}
}

// schemaV1Statements holds the initial circulation schema. The partial unique
// index on open loans backs the one-issued-loan-per-member-and-book invariant
// at the storage level; the queue index serves the FIFO head lookup.
func (cs CirculationStore) schemaV1Statements() []string {
	prefix := cs.tablePrefix

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]smembers (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	membership_class TEXT NOT NULL,
	status TEXT NOT NULL,
	issued_count INTEGER NOT NULL DEFAULT 0,
	outstanding_fines NUMERIC(12,2) NOT NULL DEFAULT 0,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]sbooks (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	isbn TEXT NOT NULL DEFAULT '',
	total_copies INTEGER NOT NULL,
	available_copies INTEGER NOT NULL,
	replacement_price NUMERIC(12,2),
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT %[1]sbooks_copies_check CHECK (available_copies >= 0 AND available_copies <= total_copies)
)`, prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]sloan_policies (
	membership_class TEXT PRIMARY KEY,
	max_books INTEGER NOT NULL,
	loan_duration_days INTEGER NOT NULL,
	renewal_limit INTEGER NOT NULL,
	fine_per_day NUMERIC(12,2) NOT NULL,
	grace_period_days INTEGER NOT NULL
)`, prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]sloans (
	id UUID PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES %[1]smembers (id),
	book_id UUID NOT NULL REFERENCES %[1]sbooks (id),
	issued_at TIMESTAMPTZ NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	returned_at TIMESTAMPTZ,
	renewal_count INTEGER NOT NULL DEFAULT 0,
	fine_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	issued_by UUID NOT NULL,
	returned_by UUID,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]sfines (
	id UUID PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES %[1]smembers (id),
	loan_id UUID REFERENCES %[1]sloans (id),
	category TEXT NOT NULL,
	amount NUMERIC(12,2) NOT NULL,
	amount_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]sreservations (
	id UUID PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES %[1]smembers (id),
	book_id UUID NOT NULL REFERENCES %[1]sbooks (id),
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	version BIGINT NOT NULL DEFAULT 1
)`, prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]scirculation_journal (
	id BIGSERIAL PRIMARY KEY,
	entry_type TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL
)`, prefix),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %[1]sloans_open_loan_idx
	ON %[1]sloans (member_id, book_id) WHERE status = 'issued'`, prefix),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]sloans_status_due_date_idx
	ON %[1]sloans (status, due_date)`, prefix),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]sreservations_queue_idx
	ON %[1]sreservations (book_id, status, created_at)`, prefix),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]sfines_member_status_idx
	ON %[1]sfines (member_id, status)`, prefix),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]scirculation_journal_occurred_at_idx
	ON %[1]scirculation_journal (occurred_at)`, prefix),
	}
}

func (cs CirculationStore) buildSeedPoliciesSQL() (sqlQueryString, error) {
	policies := circulation.DefaultLoanPolicies()
	records := make([]any, 0, len(policies))

	for _, policy := range policies {
		records = append(records, goqu.Record{
			colMembershipClass:  policy.Class,
			colMaxBooks:         policy.MaxBooks,
			colLoanDurationDays: policy.LoanDurationDays,
			colRenewalLimit:     policy.RenewalLimit,
			colFinePerDay:       policy.FinePerDay,
			colGracePeriodDays:  policy.GracePeriodDays,
		})
	}

	stmt := goqu.Dialect(dialectPostgres).
		Insert(cs.loanPoliciesTable()).
		Rows(records...).
		OnConflict(goqu.DoNothing())

	return insertToSQL(stmt)
}
