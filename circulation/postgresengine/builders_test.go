package postgresengine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

func Test_BuildInsertLoanSQL_WritesTheCompleteRow(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	loan := givenLoanRow(t)

	// act
	sqlQuery, err := cs.buildInsertLoanSQL(loan)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `INSERT INTO "loans"`)
	assert.Contains(t, sqlQuery, loan.ID.String())
	assert.Contains(t, sqlQuery, loan.MemberID.String())
	assert.Contains(t, sqlQuery, loan.BookID.String())
	assert.Contains(t, sqlQuery, `'issued'`)
	assert.Contains(t, sqlQuery, `"returned_at"`)
	assert.Contains(t, sqlQuery, "NULL")
}

func Test_BuildAdjustBookSQL_IssueTakesACopyAndBumpsTheVersion(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	bookID := uuid.New()

	// act
	sqlQuery, err := cs.buildAdjustBookSQL(bookID, exprAvailableCopiesDown, givenInstant())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "books"`)
	assert.Contains(t, sqlQuery, "available_copies - 1")
	assert.Contains(t, sqlQuery, "version + 1")
	assert.Contains(t, sqlQuery, bookID.String())
}

func Test_BuildAdjustBookSQL_ReturnPutsTheCopyBack(t *testing.T) {
	// arrange
	cs := CirculationStore{}

	// act
	sqlQuery, err := cs.buildAdjustBookSQL(uuid.New(), exprAvailableCopiesUp, givenInstant())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "available_copies + 1")
}

func Test_BuildAdjustMemberOnIssueSQL_CountsTheLoan(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	memberID := uuid.New()

	// act
	sqlQuery, err := cs.buildAdjustMemberOnIssueSQL(memberID, givenInstant())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "members"`)
	assert.Contains(t, sqlQuery, "issued_count + 1")
	assert.Contains(t, sqlQuery, "version + 1")
	assert.Contains(t, sqlQuery, memberID.String())
}

func Test_BuildAdjustMemberOnReturnSQL_ClampsTheCountAtZero(t *testing.T) {
	// arrange
	cs := CirculationStore{}

	// act
	sqlQuery, err := cs.buildAdjustMemberOnReturnSQL(uuid.New(), nil, givenInstant())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "GREATEST(issued_count - 1, 0)")
	assert.NotContains(t, sqlQuery, "outstanding_fines")
}

func Test_BuildAdjustMemberOnReturnSQL_AddsTheFineToTheBalance(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	fine := givenFineRow(t, "3.50")

	// act
	sqlQuery, err := cs.buildAdjustMemberOnReturnSQL(uuid.New(), &fine, givenInstant())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "outstanding_fines + ")
	assert.Contains(t, sqlQuery, "3.5")
	assert.Contains(t, sqlQuery, "GREATEST(issued_count - 1, 0)")
}

func Test_BuildAdjustMemberOnFinePaymentSQL_FloorsTheBalanceAtZero(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	reduction := decimal.RequireFromString("2.25")

	// act
	sqlQuery, err := cs.buildAdjustMemberOnFinePaymentSQL(uuid.New(), reduction, givenInstant())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "GREATEST(outstanding_fines - ")
	assert.Contains(t, sqlQuery, "2.25")
}

func Test_BuildFulfillReservationSQL_FlipsTheStatus(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	reservationID := uuid.New()

	// act
	sqlQuery, err := cs.buildFulfillReservationSQL(reservationID)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "reservations"`)
	assert.Contains(t, sqlQuery, `'fulfilled'`)
	assert.Contains(t, sqlQuery, "version + 1")
	assert.Contains(t, sqlQuery, reservationID.String())
}

func Test_BuildReturnLoanUpdateSQL_ClosesTheLoan(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	fine := givenFineRow(t, "4.00")
	plan := core.ReturnPlan{
		LoanID:     uuid.New(),
		MemberID:   uuid.New(),
		BookID:     uuid.New(),
		ReturnedAt: givenInstant(),
		ReturnedBy: uuid.New(),
		Fine:       &fine,
	}

	// act
	sqlQuery, err := cs.buildReturnLoanUpdateSQL(plan)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "loans"`)
	assert.Contains(t, sqlQuery, `'returned'`)
	assert.Contains(t, sqlQuery, plan.LoanID.String())
	assert.Contains(t, sqlQuery, plan.ReturnedBy.String())
	assert.Contains(t, sqlQuery, "4")
	assert.Contains(t, sqlQuery, "version + 1")
}

func Test_BuildReturnLoanUpdateSQL_WithoutFineWritesZeroAmount(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	plan := core.ReturnPlan{
		LoanID:     uuid.New(),
		ReturnedAt: givenInstant(),
		ReturnedBy: uuid.New(),
	}

	// act
	sqlQuery, err := cs.buildReturnLoanUpdateSQL(plan)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"fine_amount"='0'`)
}

func Test_BuildRenewLoanUpdateSQL_AdvancesDueDateAndCount(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	plan := core.RenewPlan{
		LoanID:          uuid.New(),
		NewDueDate:      time.Date(2025, time.April, 24, 0, 0, 0, 0, time.UTC),
		NewRenewalCount: 2,
		RenewedAt:       givenInstant(),
	}

	// act
	sqlQuery, err := cs.buildRenewLoanUpdateSQL(plan)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "loans"`)
	assert.Contains(t, sqlQuery, `"renewal_count"=2`)
	assert.Contains(t, sqlQuery, "2025-04-24")
	assert.Contains(t, sqlQuery, "version + 1")
}

func Test_BuildFinePaymentUpdateSQL_RecordsPaymentAndStatus(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	plan := core.PayFinePlan{
		FineID:        uuid.New(),
		MemberID:      uuid.New(),
		NewAmountPaid: decimal.RequireFromString("4.00"),
		NewFineStatus: circulation.FineStatusPaid,
		PaidAt:        givenInstant(),
	}

	// act
	sqlQuery, err := cs.buildFinePaymentUpdateSQL(plan)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "fines"`)
	assert.Contains(t, sqlQuery, `'paid'`)
	assert.Contains(t, sqlQuery, `'4'`)
	assert.Contains(t, sqlQuery, plan.FineID.String())
}

func Test_BuildInsertFineSQL_KeepsTheLoanReference(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	fine := givenFineRow(t, "1.00")
	loanID := uuid.New()
	fine.LoanID = &loanID

	// act
	sqlQuery, err := cs.buildInsertFineSQL(fine)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `INSERT INTO "fines"`)
	assert.Contains(t, sqlQuery, loanID.String())
	assert.Contains(t, sqlQuery, `'overdue'`)
	assert.Contains(t, sqlQuery, `'pending'`)
}

func Test_BuildInsertFineSQL_WithoutLoanWritesNull(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	fine := givenFineRow(t, "1.00")
	fine.LoanID = nil

	// act
	sqlQuery, err := cs.buildInsertFineSQL(fine)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "NULL")
}

func Test_BuildInsertJournalSQL_CastsThePayloadToJsonb(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	entry, entryErr := circulation.BuildJournalEntry(
		circulation.JournalEntryTypeLoanIssued,
		givenInstant(),
		[]byte(`{"loanId":"x"}`),
	)
	require.NoError(t, entryErr)

	// act
	sqlQuery, err := cs.buildInsertJournalSQL(entry)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `INSERT INTO "circulation_journal"`)
	assert.Contains(t, sqlQuery, "::jsonb")
	assert.Contains(t, sqlQuery, `'LoanIssued'`)
}

func Test_BuildQueueHeadSelectSQL_SelectsTheOldestActiveReservation(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	bookID := uuid.New()

	// act
	sqlQuery, err := cs.buildQueueHeadSelectSQL(bookID)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "reservations"`)
	assert.Contains(t, sqlQuery, `'active'`)
	assert.Contains(t, sqlQuery, `ORDER BY "created_at" ASC, "id" ASC`)
	assert.Contains(t, sqlQuery, "LIMIT 1")
}

func Test_BuildOpenLoanExistsSQL_RestrictsToIssuedLoans(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	memberID := uuid.New()
	bookID := uuid.New()

	// act
	sqlQuery, err := cs.buildOpenLoanExistsSQL(memberID, bookID)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `'issued'`)
	assert.Contains(t, sqlQuery, memberID.String())
	assert.Contains(t, sqlQuery, bookID.String())
	assert.Contains(t, sqlQuery, "LIMIT 1")
}

func Test_BuildLoanDetailsSQL_WithoutCriteriaSelectsEverything(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	filter := circulation.BuildLoanFilter().MatchingAnyLoan()

	// act
	sqlQuery, err := cs.buildLoanDetailsSQL(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "loans" AS "l"`)
	assert.Contains(t, sqlQuery, `INNER JOIN "members" AS "m"`)
	assert.Contains(t, sqlQuery, `INNER JOIN "books" AS "b"`)
	assert.Contains(t, sqlQuery, `LEFT JOIN "loan_policies" AS "p"`)
	assert.NotContains(t, sqlQuery, "WHERE")
	assert.Contains(t, sqlQuery, `ORDER BY "l"."due_date" ASC, "l"."id" ASC`)
}

func Test_BuildLoanDetailsSQL_TranslatesEveryCriterion(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	memberID := uuid.New()
	bookID := uuid.New()
	deadline := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	filter := circulation.BuildLoanFilter().
		Matching().
		AnyStatusOf(circulation.LoanStatusIssued).
		OwnedByMember(memberID).
		ForBook(bookID).
		DueBefore(deadline).
		Finalize()

	// act
	sqlQuery, err := cs.buildLoanDetailsSQL(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"l"."status" IN ('issued')`)
	assert.Contains(t, sqlQuery, memberID.String())
	assert.Contains(t, sqlQuery, bookID.String())
	assert.Contains(t, sqlQuery, `"l"."due_date" <`)
	assert.Contains(t, sqlQuery, "2025-05-01")
}

func Test_BuildJournalTailSQL_ReadsNewestFirst(t *testing.T) {
	// arrange
	cs := CirculationStore{}

	// act
	sqlQuery, err := cs.buildJournalTailSQL(25)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `ORDER BY "id" DESC`)
	assert.Contains(t, sqlQuery, "LIMIT 25")
}

func Test_BuildSeedPoliciesSQL_InsertsAllClassesConflictFree(t *testing.T) {
	// arrange
	cs := CirculationStore{}

	// act
	sqlQuery, err := cs.buildSeedPoliciesSQL()

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `INSERT INTO "loan_policies"`)
	assert.Contains(t, sqlQuery, `'student'`)
	assert.Contains(t, sqlQuery, `'faculty'`)
	assert.Contains(t, sqlQuery, `'public'`)
	assert.Contains(t, sqlQuery, "ON CONFLICT DO NOTHING")
}

func Test_SchemaV1Statements_CreateTheWholeSchema(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	err := WithTablePrefix("lib_")(&cs)
	require.NoError(t, err)

	// act
	statements := cs.schemaV1Statements()
	allStatements := ""
	for _, statement := range statements {
		allStatements += statement + "\n"
	}

	// assert
	for _, table := range []string{
		"lib_members", "lib_books", "lib_loan_policies", "lib_loans",
		"lib_fines", "lib_reservations", "lib_circulation_journal",
	} {
		assert.Contains(t, allStatements, table)
	}

	assert.Contains(t, allStatements, "WHERE status = 'issued'")
	assert.Contains(t, allStatements, "available_copies >= 0 AND available_copies <= total_copies")
	assert.Contains(t, allStatements, "book_id, status, created_at")
}

func givenInstant() time.Time {
	return time.Date(2025, time.March, 10, 15, 4, 5, 0, time.UTC)
}

func givenLoanRow(t *testing.T) circulation.Loan {
	t.Helper()

	issuedAt := givenInstant()

	return circulation.Loan{
		ID:           uuid.New(),
		MemberID:     uuid.New(),
		BookID:       uuid.New(),
		IssuedAt:     issuedAt,
		DueDate:      time.Date(2025, time.March, 24, 0, 0, 0, 0, time.UTC),
		RenewalCount: 0,
		FineAmount:   decimal.Zero,
		Status:       circulation.LoanStatusIssued,
		IssuedBy:     uuid.New(),
		Version:      1,
		CreatedAt:    issuedAt,
		UpdatedAt:    issuedAt,
	}
}

func givenFineRow(t *testing.T, amount string) circulation.Fine {
	t.Helper()

	createdAt := givenInstant()

	return circulation.Fine{
		ID:          uuid.New(),
		MemberID:    uuid.New(),
		Category:    circulation.FineCategoryOverdue,
		Amount:      decimal.RequireFromString(amount),
		AmountPaid:  decimal.Zero,
		Status:      circulation.FineStatusPending,
		Description: "overdue return",
		Version:     1,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}
