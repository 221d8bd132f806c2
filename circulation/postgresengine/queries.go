package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	aliasLoans    = "l"
	aliasMembers  = "m"
	aliasBooks    = "b"
	aliasPolicies = "p"
)

// LoadLoanDetails selects the loans matching the filter, joined with their
// member, book, and the loan policy for the member's class. The policy join is
// outer: a missing policy surfaces as a nil Policy on the detail row instead
// of dropping the loan from the result.
func (cs CirculationStore) LoadLoanDetails(ctx context.Context, filter circulation.LoanFilter) ([]core.LoanDetail, error) {
	sqlQuery, buildErr := cs.buildLoanDetailsSQL(filter)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, duration, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	details := make([]core.LoanDetail, 0)

	for rows.Next() {
		detail, scanErr := cs.scanLoanDetailRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		details = append(details, detail)
	}

	cs.logOperation(
		ctx,
		logMsgLoanDetailsLoaded,
		logAttrRowCount, len(details),
		logAttrDurationMS, cs.durationToMilliseconds(duration))

	return details, nil
}

// LoadJournalEntries returns the most recent journal entries, newest first.
func (cs CirculationStore) LoadJournalEntries(ctx context.Context, tailLength int) ([]circulation.JournalEntry, error) {
	if tailLength <= 0 {
		return nil, circulation.ValidationError("journal tail length must be positive, got %d", tailLength)
	}

	sqlQuery, buildErr := cs.buildJournalTailSQL(tailLength)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, duration, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	entries := make([]circulation.JournalEntry, 0, tailLength)

	for rows.Next() {
		var entryType string
		var occurredAt time.Time
		var payload []byte

		if scanErr := rows.Scan(&entryType, &occurredAt, &payload); scanErr != nil {
			cs.logError(ctx, logMsgScanRowFailed, scanErr, logAttrTable, cs.journalTable())
			return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
		}

		entry, buildEntryErr := circulation.BuildJournalEntry(entryType, occurredAt, payload)
		if buildEntryErr != nil {
			cs.logError(ctx, logMsgBuildJournalRowFailed, buildEntryErr)
			return nil, errors.Join(circulation.ErrBuildingJournalEntryFailed, buildEntryErr)
		}

		entries = append(entries, entry)
	}

	cs.logOperation(
		ctx,
		logMsgJournalTailLoaded,
		logAttrRowCount, len(entries),
		logAttrDurationMS, cs.durationToMilliseconds(duration))

	return entries, nil
}

func (cs CirculationStore) buildLoanDetailsSQL(filter circulation.LoanFilter) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	stmt := builder.
		From(goqu.T(cs.loansTable()).As(aliasLoans)).
		Join(
			goqu.T(cs.membersTable()).As(aliasMembers),
			goqu.On(goqu.I(qualified(aliasMembers, colID)).Eq(goqu.I(qualified(aliasLoans, colMemberID))))).
		Join(
			goqu.T(cs.booksTable()).As(aliasBooks),
			goqu.On(goqu.I(qualified(aliasBooks, colID)).Eq(goqu.I(qualified(aliasLoans, colBookID))))).
		LeftJoin(
			goqu.T(cs.loanPoliciesTable()).As(aliasPolicies),
			goqu.On(goqu.I(qualified(aliasPolicies, colMembershipClass)).Eq(goqu.I(qualified(aliasMembers, colMembershipClass))))).
		Select(loanDetailColumns()...).
		Order(
			goqu.I(qualified(aliasLoans, colDueDate)).Asc(),
			goqu.I(qualified(aliasLoans, colID)).Asc())

	conditions := make([]goqu.Expression, 0)

	if statuses := filter.Statuses(); len(statuses) > 0 {
		conditions = append(conditions, goqu.I(qualified(aliasLoans, colStatus)).In(statuses))
	}

	if filter.HasMemberID() {
		conditions = append(conditions, goqu.I(qualified(aliasLoans, colMemberID)).Eq(filter.MemberID()))
	}

	if filter.HasBookID() {
		conditions = append(conditions, goqu.I(qualified(aliasLoans, colBookID)).Eq(filter.BookID()))
	}

	if filter.HasDueBound() {
		conditions = append(conditions, goqu.I(qualified(aliasLoans, colDueDate)).Lt(filter.DueBefore()))
	}

	if len(conditions) > 0 {
		stmt = stmt.Where(goqu.And(conditions...))
	}

	return toSQL(stmt)
}

func (cs CirculationStore) buildJournalTailSQL(tailLength int) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.journalTable()).
		Select(colEntryType, colOccurredAt, colPayload).
		Order(goqu.I(colID).Desc()).
		Limit(uint(tailLength))

	return toSQL(stmt)
}

func loanDetailColumns() []any {
	return []any{
		qualified(aliasLoans, colID),
		qualified(aliasLoans, colMemberID),
		qualified(aliasLoans, colBookID),
		qualified(aliasLoans, colIssuedAt),
		qualified(aliasLoans, colDueDate),
		qualified(aliasLoans, colReturnedAt),
		qualified(aliasLoans, colRenewalCount),
		qualified(aliasLoans, colFineAmount),
		qualified(aliasLoans, colStatus),
		qualified(aliasLoans, colIssuedBy),
		qualified(aliasLoans, colReturnedBy),
		qualified(aliasLoans, colVersion),
		qualified(aliasLoans, colCreatedAt),
		qualified(aliasLoans, colUpdatedAt),
		qualified(aliasMembers, colName),
		qualified(aliasMembers, colEmail),
		qualified(aliasMembers, colMembershipClass),
		qualified(aliasBooks, colTitle),
		qualified(aliasBooks, colAuthor),
		qualified(aliasBooks, colReplacementPrice),
		qualified(aliasPolicies, colMembershipClass),
		qualified(aliasPolicies, colMaxBooks),
		qualified(aliasPolicies, colLoanDurationDays),
		qualified(aliasPolicies, colRenewalLimit),
		qualified(aliasPolicies, colFinePerDay),
		qualified(aliasPolicies, colGracePeriodDays),
	}
}

func qualified(alias string, column string) string {
	return fmt.Sprintf("%s.%s", alias, column)
}

func (cs CirculationStore) scanLoanDetailRow(rows interface{ Scan(dest ...any) error }) (core.LoanDetail, error) {
	var empty core.LoanDetail
	var detail core.LoanDetail

	var returnedAt sql.NullTime
	var returnedBy uuid.NullUUID
	var replacementPrice decimal.NullDecimal

	var policyClass sql.NullString
	var policyMaxBooks, policyDurationDays, policyRenewalLimit, policyGraceDays sql.NullInt64
	var policyFinePerDay decimal.NullDecimal

	scanErr := rows.Scan(
		&detail.Loan.ID, &detail.Loan.MemberID, &detail.Loan.BookID,
		&detail.Loan.IssuedAt, &detail.Loan.DueDate, &returnedAt,
		&detail.Loan.RenewalCount, &detail.Loan.FineAmount, &detail.Loan.Status,
		&detail.Loan.IssuedBy, &returnedBy,
		&detail.Loan.Version, &detail.Loan.CreatedAt, &detail.Loan.UpdatedAt,
		&detail.MemberName, &detail.MemberEmail, &detail.MemberClass,
		&detail.BookTitle, &detail.BookAuthor, &replacementPrice,
		&policyClass, &policyMaxBooks, &policyDurationDays,
		&policyRenewalLimit, &policyFinePerDay, &policyGraceDays)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.loansTable())
		}
		return empty, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	if returnedAt.Valid {
		detail.Loan.ReturnedAt = &returnedAt.Time
	}
	if returnedBy.Valid {
		detail.Loan.ReturnedBy = &returnedBy.UUID
	}
	if replacementPrice.Valid {
		detail.ReplacementPrice = &replacementPrice.Decimal
	}

	if policyClass.Valid {
		detail.Policy = &circulation.LoanPolicy{
			Class:            circulation.MembershipClass(policyClass.String),
			MaxBooks:         int(policyMaxBooks.Int64),
			LoanDurationDays: int(policyDurationDays.Int64),
			RenewalLimit:     int(policyRenewalLimit.Int64),
			FinePerDay:       policyFinePerDay.Decimal,
			GracePeriodDays:  int(policyGraceDays.Int64),
		}
	}

	return detail, nil
}
