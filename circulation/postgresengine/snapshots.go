package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// LoadIssueSnapshot reads everything the issue decision needs: the member and
// their policy, the book, whether an open loan already links the pair, and the
// head of the book's reservation queue. Missing records stay nil so the
// decision can report them in its own check order.
func (cs CirculationStore) LoadIssueSnapshot(ctx context.Context, memberID uuid.UUID, bookID uuid.UUID) (core.IssueSnapshot, error) {
	var empty core.IssueSnapshot

	start := time.Now()
	snapshot := core.IssueSnapshot{MemberID: memberID, BookID: bookID}

	member, memberErr := cs.loadMemberByID(ctx, memberID)
	if memberErr != nil {
		return empty, memberErr
	}
	snapshot.Member = member

	if member != nil {
		policy, policyErr := cs.loadPolicyByClass(ctx, member.Class)
		if policyErr != nil {
			return empty, policyErr
		}
		snapshot.Policy = policy
	}

	book, bookErr := cs.loadBookByID(ctx, bookID)
	if bookErr != nil {
		return empty, bookErr
	}
	snapshot.Book = book

	hasOpenLoan, openLoanErr := cs.openLoanExists(ctx, memberID, bookID)
	if openLoanErr != nil {
		return empty, openLoanErr
	}
	snapshot.HasOpenLoanForBook = hasOpenLoan

	queueHead, queueErr := cs.loadQueueHead(ctx, bookID)
	if queueErr != nil {
		return empty, queueErr
	}
	snapshot.QueueHead = queueHead

	cs.logOperation(
		ctx,
		logMsgSnapshotLoaded,
		logAttrSnapshot, snapshotIssue,
		logAttrDurationMS, cs.durationToMilliseconds(time.Since(start)))

	return snapshot, nil
}

// LoadReturnSnapshot locates the loan by id, or by the (member, book) pair
// when no id is given, and loads the surrounding records the return decision
// needs. The requested identifiers are echoed on the snapshot so the decision
// can distinguish missing input from a missing loan.
func (cs CirculationStore) LoadReturnSnapshot(ctx context.Context, loanID uuid.UUID, bookID uuid.UUID, memberID uuid.UUID) (core.ReturnSnapshot, error) {
	var empty core.ReturnSnapshot

	start := time.Now()
	snapshot := core.ReturnSnapshot{LoanID: loanID, BookID: bookID, MemberID: memberID}

	loan, loanErr := cs.locateLoanForReturn(ctx, loanID, bookID, memberID)
	if loanErr != nil {
		return empty, loanErr
	}
	snapshot.Loan = loan

	if loan == nil {
		return snapshot, nil
	}

	member, memberErr := cs.loadMemberByID(ctx, loan.MemberID)
	if memberErr != nil {
		return empty, memberErr
	}
	snapshot.Member = member

	if member != nil {
		policy, policyErr := cs.loadPolicyByClass(ctx, member.Class)
		if policyErr != nil {
			return empty, policyErr
		}
		snapshot.Policy = policy
	}

	book, bookErr := cs.loadBookByID(ctx, loan.BookID)
	if bookErr != nil {
		return empty, bookErr
	}
	snapshot.Book = book

	queueHead, queueErr := cs.loadQueueHead(ctx, loan.BookID)
	if queueErr != nil {
		return empty, queueErr
	}
	snapshot.QueueHead = queueHead

	if queueHead != nil {
		holder, holderErr := cs.loadMemberByID(ctx, queueHead.MemberID)
		if holderErr != nil {
			return empty, holderErr
		}
		snapshot.QueueHeadHolder = holder
	}

	cs.logOperation(
		ctx,
		logMsgSnapshotLoaded,
		logAttrSnapshot, snapshotReturn,
		logAttrDurationMS, cs.durationToMilliseconds(time.Since(start)))

	return snapshot, nil
}

// LoadRenewSnapshot reads the loan, the borrower and their policy, and the
// head of the book's reservation queue for the renewal decision.
func (cs CirculationStore) LoadRenewSnapshot(ctx context.Context, loanID uuid.UUID) (core.RenewSnapshot, error) {
	var empty core.RenewSnapshot

	start := time.Now()
	snapshot := core.RenewSnapshot{LoanID: loanID}

	loan, loanErr := cs.loadLoanByID(ctx, loanID)
	if loanErr != nil {
		return empty, loanErr
	}
	snapshot.Loan = loan

	if loan == nil {
		return snapshot, nil
	}

	member, memberErr := cs.loadMemberByID(ctx, loan.MemberID)
	if memberErr != nil {
		return empty, memberErr
	}
	snapshot.Member = member

	if member != nil {
		policy, policyErr := cs.loadPolicyByClass(ctx, member.Class)
		if policyErr != nil {
			return empty, policyErr
		}
		snapshot.Policy = policy
	}

	queueHead, queueErr := cs.loadQueueHead(ctx, loan.BookID)
	if queueErr != nil {
		return empty, queueErr
	}
	snapshot.QueueHead = queueHead

	cs.logOperation(
		ctx,
		logMsgSnapshotLoaded,
		logAttrSnapshot, snapshotRenew,
		logAttrDurationMS, cs.durationToMilliseconds(time.Since(start)))

	return snapshot, nil
}

// LoadPayFineSnapshot reads the fine and the member it belongs to.
func (cs CirculationStore) LoadPayFineSnapshot(ctx context.Context, fineID uuid.UUID) (core.PayFineSnapshot, error) {
	var empty core.PayFineSnapshot

	start := time.Now()
	snapshot := core.PayFineSnapshot{FineID: fineID}

	fine, fineErr := cs.loadFineByID(ctx, fineID)
	if fineErr != nil {
		return empty, fineErr
	}
	snapshot.Fine = fine

	if fine != nil {
		member, memberErr := cs.loadMemberByID(ctx, fine.MemberID)
		if memberErr != nil {
			return empty, memberErr
		}
		snapshot.Member = member
	}

	cs.logOperation(
		ctx,
		logMsgSnapshotLoaded,
		logAttrSnapshot, snapshotPayFine,
		logAttrDurationMS, cs.durationToMilliseconds(time.Since(start)))

	return snapshot, nil
}

func (cs CirculationStore) locateLoanForReturn(ctx context.Context, loanID uuid.UUID, bookID uuid.UUID, memberID uuid.UUID) (*circulation.Loan, error) {
	if loanID != uuid.Nil {
		return cs.loadLoanByID(ctx, loanID)
	}

	if memberID != uuid.Nil && bookID != uuid.Nil {
		return cs.loadOpenLoanForMemberAndBook(ctx, memberID, bookID)
	}

	return nil, nil
}

func (cs CirculationStore) loadMemberByID(ctx context.Context, memberID uuid.UUID) (*circulation.Member, error) {
	sqlQuery, buildErr := cs.buildMemberSelectSQL(memberID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	return cs.scanMemberRow(rows)
}

func (cs CirculationStore) loadPolicyByClass(ctx context.Context, class circulation.MembershipClass) (*circulation.LoanPolicy, error) {
	sqlQuery, buildErr := cs.buildPolicySelectSQL(class)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	return cs.scanPolicyRow(rows)
}

func (cs CirculationStore) loadBookByID(ctx context.Context, bookID uuid.UUID) (*circulation.Book, error) {
	sqlQuery, buildErr := cs.buildBookSelectSQL(bookID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	return cs.scanBookRow(rows)
}

func (cs CirculationStore) loadLoanByID(ctx context.Context, loanID uuid.UUID) (*circulation.Loan, error) {
	sqlQuery, buildErr := cs.buildLoanSelectSQL(loanID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	return cs.loadSingleLoan(ctx, sqlQuery)
}

func (cs CirculationStore) loadOpenLoanForMemberAndBook(ctx context.Context, memberID uuid.UUID, bookID uuid.UUID) (*circulation.Loan, error) {
	sqlQuery, buildErr := cs.buildOpenLoanSelectSQL(memberID, bookID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	return cs.loadSingleLoan(ctx, sqlQuery)
}

func (cs CirculationStore) loadSingleLoan(ctx context.Context, sqlQuery sqlQueryString) (*circulation.Loan, error) {
	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	return cs.scanLoanRow(rows)
}

func (cs CirculationStore) openLoanExists(ctx context.Context, memberID uuid.UUID, bookID uuid.UUID) (bool, error) {
	sqlQuery, buildErr := cs.buildOpenLoanExistsSQL(memberID, bookID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return false, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return false, queryErr
	}
	defer cs.closeRows(rows)

	return rows.Next(), nil
}

func (cs CirculationStore) loadQueueHead(ctx context.Context, bookID uuid.UUID) (*circulation.Reservation, error) {
	sqlQuery, buildErr := cs.buildQueueHeadSelectSQL(bookID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	return cs.scanReservationRow(rows)
}

func (cs CirculationStore) loadFineByID(ctx context.Context, fineID uuid.UUID) (*circulation.Fine, error) {
	sqlQuery, buildErr := cs.buildFineSelectSQL(fineID)
	if buildErr != nil {
		cs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, sqlQuery, logActionLoad)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	return cs.scanFineRow(rows)
}

func (cs CirculationStore) buildMemberSelectSQL(memberID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.membersTable()).
		Select(
			colID, colName, colEmail, colMembershipClass, colStatus,
			colIssuedCount, colOutstandingFines, colVersion, colCreatedAt, colUpdatedAt).
		Where(goqu.Ex{colID: memberID})

	return toSQL(stmt)
}

func (cs CirculationStore) buildPolicySelectSQL(class circulation.MembershipClass) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.loanPoliciesTable()).
		Select(
			colMembershipClass, colMaxBooks, colLoanDurationDays,
			colRenewalLimit, colFinePerDay, colGracePeriodDays).
		Where(goqu.Ex{colMembershipClass: class})

	return toSQL(stmt)
}

func (cs CirculationStore) buildBookSelectSQL(bookID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.booksTable()).
		Select(
			colID, colTitle, colAuthor, colISBN, colTotalCopies, colAvailableCopies,
			colReplacementPrice, colIsDeleted, colVersion, colCreatedAt, colUpdatedAt).
		Where(goqu.Ex{colID: bookID})

	return toSQL(stmt)
}

func (cs CirculationStore) buildLoanSelectSQL(loanID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.loansTable()).
		Select(loanColumns()...).
		Where(goqu.Ex{colID: loanID})

	return toSQL(stmt)
}

func (cs CirculationStore) buildOpenLoanSelectSQL(memberID uuid.UUID, bookID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.loansTable()).
		Select(loanColumns()...).
		Where(goqu.Ex{
			colMemberID: memberID,
			colBookID:   bookID,
			colStatus:   circulation.LoanStatusIssued,
		}).
		Order(goqu.I(colIssuedAt).Asc()).
		Limit(1)

	return toSQL(stmt)
}

func (cs CirculationStore) buildOpenLoanExistsSQL(memberID uuid.UUID, bookID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.loansTable()).
		Select(goqu.L("1")).
		Where(goqu.Ex{
			colMemberID: memberID,
			colBookID:   bookID,
			colStatus:   circulation.LoanStatusIssued,
		}).
		Limit(1)

	return toSQL(stmt)
}

// buildQueueHeadSelectSQL selects the oldest active reservation for a book.
// The id is a second ordering key so ties on the creation timestamp stay deterministic.
func (cs CirculationStore) buildQueueHeadSelectSQL(bookID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.reservationsTable()).
		Select(colID, colMemberID, colBookID, colStatus, colCreatedAt, colVersion).
		Where(goqu.Ex{
			colBookID: bookID,
			colStatus: circulation.ReservationStatusActive,
		}).
		Order(goqu.I(colCreatedAt).Asc(), goqu.I(colID).Asc()).
		Limit(1)

	return toSQL(stmt)
}

func (cs CirculationStore) buildFineSelectSQL(fineID uuid.UUID) (sqlQueryString, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(cs.finesTable()).
		Select(
			colID, colMemberID, colLoanID, colCategory, colAmount, colAmountPaid,
			colStatus, colDescription, colVersion, colCreatedAt, colUpdatedAt).
		Where(goqu.Ex{colID: fineID})

	return toSQL(stmt)
}

func loanColumns() []any {
	return []any{
		colID, colMemberID, colBookID, colIssuedAt, colDueDate, colReturnedAt,
		colRenewalCount, colFineAmount, colStatus, colIssuedBy, colReturnedBy,
		colVersion, colCreatedAt, colUpdatedAt,
	}
}

func toSQL(stmt *goqu.SelectDataset) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (cs CirculationStore) scanMemberRow(rows interface{ Scan(dest ...any) error }) (*circulation.Member, error) {
	var member circulation.Member

	scanErr := rows.Scan(
		&member.ID, &member.Name, &member.Email, &member.Class, &member.Status,
		&member.IssuedCount, &member.OutstandingFines, &member.Version, &member.CreatedAt, &member.UpdatedAt)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.membersTable())
		}
		return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	return &member, nil
}

func (cs CirculationStore) scanPolicyRow(rows interface{ Scan(dest ...any) error }) (*circulation.LoanPolicy, error) {
	var policy circulation.LoanPolicy

	scanErr := rows.Scan(
		&policy.Class, &policy.MaxBooks, &policy.LoanDurationDays,
		&policy.RenewalLimit, &policy.FinePerDay, &policy.GracePeriodDays)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.loanPoliciesTable())
		}
		return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	return &policy, nil
}

func (cs CirculationStore) scanBookRow(rows interface{ Scan(dest ...any) error }) (*circulation.Book, error) {
	var book circulation.Book
	var price decimal.NullDecimal

	scanErr := rows.Scan(
		&book.ID, &book.Title, &book.Author, &book.ISBN, &book.TotalCopies, &book.AvailableCopies,
		&price, &book.Deleted, &book.Version, &book.CreatedAt, &book.UpdatedAt)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.booksTable())
		}
		return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	if price.Valid {
		book.ReplacementPrice = &price.Decimal
	}

	return &book, nil
}

func (cs CirculationStore) scanLoanRow(rows interface{ Scan(dest ...any) error }) (*circulation.Loan, error) {
	var loan circulation.Loan
	var returnedAt sql.NullTime
	var returnedBy uuid.NullUUID

	scanErr := rows.Scan(
		&loan.ID, &loan.MemberID, &loan.BookID, &loan.IssuedAt, &loan.DueDate, &returnedAt,
		&loan.RenewalCount, &loan.FineAmount, &loan.Status, &loan.IssuedBy, &returnedBy,
		&loan.Version, &loan.CreatedAt, &loan.UpdatedAt)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.loansTable())
		}
		return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	if returnedAt.Valid {
		loan.ReturnedAt = &returnedAt.Time
	}
	if returnedBy.Valid {
		loan.ReturnedBy = &returnedBy.UUID
	}

	return &loan, nil
}

func (cs CirculationStore) scanReservationRow(rows interface{ Scan(dest ...any) error }) (*circulation.Reservation, error) {
	var reservation circulation.Reservation

	scanErr := rows.Scan(
		&reservation.ID, &reservation.MemberID, &reservation.BookID,
		&reservation.Status, &reservation.CreatedAt, &reservation.Version)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.reservationsTable())
		}
		return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	return &reservation, nil
}

func (cs CirculationStore) scanFineRow(rows interface{ Scan(dest ...any) error }) (*circulation.Fine, error) {
	var fine circulation.Fine
	var loanID uuid.NullUUID

	scanErr := rows.Scan(
		&fine.ID, &fine.MemberID, &loanID, &fine.Category, &fine.Amount, &fine.AmountPaid,
		&fine.Status, &fine.Description, &fine.Version, &fine.CreatedAt, &fine.UpdatedAt)
	if scanErr != nil {
		if cs.logger != nil {
			cs.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTable, cs.finesTable())
		}
		return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	if loanID.Valid {
		fine.LoanID = &loanID.UUID
	}

	return &fine, nil
}
