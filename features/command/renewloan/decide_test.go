package renewloan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/features/command/renewloan"
)

func Test_Decide_Success_ExtendsDueDateByOnePolicyPeriod(t *testing.T) {
	// arrange
	snapshot := givenRenewSnapshot(t)
	renewedBy := uuid.New()
	command := renewloan.BuildCommand(
		snapshot.Loan.ID, renewedBy, time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC))

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	require.True(t, result.HasPlanToApply(), "Expected a plan, got %v", result.Err)

	plan := result.Plan
	assert.Equal(t, snapshot.Loan.ID, plan.LoanID)
	assert.Equal(t, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), plan.NewDueDate)
	assert.Equal(t, 1, plan.NewRenewalCount)

	// only the loan row is touched
	require.Len(t, plan.Guards, 1)
	assert.Equal(t, core.GuardRow(core.GuardTableLoans, snapshot.Loan.ID, snapshot.Loan.Version), plan.Guards[0])

	assert.Equal(t, renewedBy, plan.Fact.RenewedBy)
	assert.Equal(t, snapshot.Loan.DueDate, plan.Fact.PreviousDueDate)
	assert.Equal(t, plan.NewDueDate, plan.Fact.NewDueDate)
	assert.Equal(t, 1, plan.Fact.RenewalCount)
}

func Test_Decide_Success_EarlyRenewalChainsFromOldDueDate(t *testing.T) {
	// arrange - renewed three days after issue, eleven days before due
	snapshot := givenRenewSnapshot(t)
	command := renewloan.BuildCommand(
		snapshot.Loan.ID, uuid.New(), time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC))

	// act
	result := renewloan.Decide(snapshot, command)

	// assert - the extension starts at the old due date, not at the renewal time
	require.True(t, result.HasPlanToApply())
	assert.Equal(t, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), result.Plan.NewDueDate)
}

func Test_Decide_Success_OverdueLoanCanStillBeRenewed(t *testing.T) {
	// arrange - renewed well past the due date
	snapshot := givenRenewSnapshot(t)
	command := renewloan.BuildCommand(
		snapshot.Loan.ID, uuid.New(), time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC))

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	require.True(t, result.HasPlanToApply(), "Being overdue must not block a renewal")
	assert.Equal(t, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), result.Plan.NewDueDate)
}

func Test_Decide_Success_OwnReservationDoesNotBlock(t *testing.T) {
	// arrange
	snapshot := givenRenewSnapshot(t)
	snapshot.QueueHead = givenActiveReservation(t, snapshot.Loan.BookID, snapshot.Loan.MemberID)

	command := renewloan.BuildCommand(snapshot.Loan.ID, uuid.New(), time.Now())

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	assert.True(t, result.HasPlanToApply(), "A borrower's own reservation must not block their renewal")
}

func Test_Decide_Error_WhenRenewalLimitReached(t *testing.T) {
	// arrange
	snapshot := givenRenewSnapshot(t)
	snapshot.Loan.RenewalCount = snapshot.Policy.RenewalLimit

	command := renewloan.BuildCommand(snapshot.Loan.ID, uuid.New(), time.Now())

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	assert.ErrorIs(t, result.Err, circulation.ErrIneligible)
	assert.ErrorContains(t, result.Err, "2 of 2 renewals used")
	assert.False(t, result.HasPlanToApply(), "The due date must stay unchanged")
}

func Test_Decide_Error_WhenAnotherMemberHoldsTheQueueHead(t *testing.T) {
	// arrange
	snapshot := givenRenewSnapshot(t)
	snapshot.QueueHead = givenActiveReservation(t, snapshot.Loan.BookID, uuid.New())

	command := renewloan.BuildCommand(snapshot.Loan.ID, uuid.New(), time.Now())

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	assert.ErrorIs(t, result.Err, circulation.ErrConflict)
	assert.ErrorContains(t, result.Err, "reserved by another member")
}

func Test_Decide_Error_WhenLoanAlreadyReturned(t *testing.T) {
	// arrange
	snapshot := givenRenewSnapshot(t)
	snapshot.Loan.Status = circulation.LoanStatusReturned

	command := renewloan.BuildCommand(snapshot.Loan.ID, uuid.New(), time.Now())

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	assert.ErrorIs(t, result.Err, circulation.ErrInvalidState)
	assert.ErrorContains(t, result.Err, "only issued loans can be renewed")
}

func Test_Decide_Error_WhenLoanUnknown(t *testing.T) {
	// arrange
	loanID := uuid.New()
	snapshot := core.RenewSnapshot{LoanID: loanID}

	command := renewloan.BuildCommand(loanID, uuid.New(), time.Now())

	// act
	result := renewloan.Decide(snapshot, command)

	// assert
	assert.ErrorIs(t, result.Err, circulation.ErrNotFound)
	assert.ErrorContains(t, result.Err, loanID.String())
}

// Test helper functions

func givenRenewSnapshot(t *testing.T) core.RenewSnapshot {
	t.Helper()

	memberID := uuid.New()
	loanID := uuid.New()

	policy, err := circulation.BuildLoanPolicy(
		circulation.MembershipClassStudent, 5, 14, 2, decimal.RequireFromString("1.00"), 2)
	require.NoError(t, err)

	issuedAt := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	return core.RenewSnapshot{
		LoanID: loanID,
		Loan: &circulation.Loan{
			ID:           loanID,
			MemberID:     memberID,
			BookID:       uuid.New(),
			IssuedAt:     issuedAt,
			DueDate:      time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
			RenewalCount: 0,
			FineAmount:   decimal.Zero,
			Status:       circulation.LoanStatusIssued,
			IssuedBy:     uuid.New(),
			Version:      3,
			CreatedAt:    issuedAt,
			UpdatedAt:    issuedAt,
		},
		Member: &circulation.Member{
			ID:               memberID,
			Name:             "Grace Hopper",
			Email:            "grace@example.com",
			Class:            circulation.MembershipClassStudent,
			Status:           circulation.MemberStatusActive,
			IssuedCount:      1,
			OutstandingFines: decimal.Zero,
			Version:          2,
			CreatedAt:        issuedAt,
			UpdatedAt:        issuedAt,
		},
		Policy: &policy,
	}
}

func givenActiveReservation(t *testing.T, bookID uuid.UUID, memberID uuid.UUID) *circulation.Reservation {
	t.Helper()

	return &circulation.Reservation{
		ID:        uuid.New(),
		MemberID:  memberID,
		BookID:    bookID,
		Status:    circulation.ReservationStatusActive,
		CreatedAt: time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC),
		Version:   1,
	}
}
