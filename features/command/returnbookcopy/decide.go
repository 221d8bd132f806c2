package returnbookcopy

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const dateLayout = "2006-01-02"

// Decide implements the business logic to determine how an issued book copy is returned.
// This is a pure function with no side effects - it takes the loaded snapshot and a command
// and returns the plan that should be applied based on the business rules.
//
// Business Rules:
//
//	GIVEN: An issued loan, located by loan id or by the (book, member) pair
//	WHEN: ReturnBookCopy command is received
//	THEN: The loan is closed, the book regains one available copy, the
//	      member's issued count drops by one (floor-clamped at zero), and a
//	      pending overdue fine is assessed when the return is late past the
//	      grace window, all in one plan
//	ERROR: validation error if neither a loan id nor a full (book, member)
//	       pair was supplied
//	ERROR: not-found if no matching loan exists
//	ERROR: invalid-state if the loan was already returned
//
// The receipt and journal report the chargeable overdue days, the same count
// the fine is computed from. The head of the book's reservation queue is
// surfaced for an external notifier but never mutated.
func Decide(snapshot core.ReturnSnapshot, command Command) core.DecisionResult[core.ReturnPlan] {
	if command.LoanID == uuid.Nil && (command.BookID == uuid.Nil || command.MemberID == uuid.Nil) {
		return core.ErrorDecision[core.ReturnPlan](circulation.ValidationError(
			"either a loan id or both a book id and a member id are required to locate the loan"))
	}

	loan := snapshot.Loan
	if loan == nil {
		if command.LoanID != uuid.Nil {
			return core.ErrorDecision[core.ReturnPlan](circulation.NotFoundError(
				"loan %s not found", command.LoanID))
		}

		return core.ErrorDecision[core.ReturnPlan](circulation.NotFoundError(
			"no issued loan found for member %s and book %s", command.MemberID, command.BookID))
	}

	if !loan.IsOpen() {
		return core.ErrorDecision[core.ReturnPlan](circulation.InvalidStateError(
			"loan %s is %q, only issued loans can be returned", loan.ID, loan.Status))
	}

	if snapshot.Member == nil {
		return core.ErrorDecision[core.ReturnPlan](circulation.NotFoundError(
			"member %s referenced by loan %s not found", loan.MemberID, loan.ID))
	}

	if snapshot.Policy == nil {
		return core.ErrorDecision[core.ReturnPlan](circulation.MisconfigurationError(
			"no loan policy configured for membership class %q", snapshot.Member.Class))
	}

	if snapshot.Book == nil {
		return core.ErrorDecision[core.ReturnPlan](circulation.NotFoundError(
			"book %s referenced by loan %s not found", loan.BookID, loan.ID))
	}

	computation := core.ComputeOverdueFine(
		loan.DueDate, command.OccurredAt, *snapshot.Policy, snapshot.Book.ReplacementPrice)

	plan := core.ReturnPlan{
		LoanID:             loan.ID,
		MemberID:           loan.MemberID,
		BookID:             loan.BookID,
		ReturnedAt:         command.OccurredAt,
		ReturnedBy:         command.ReturnedBy,
		OverdueDays:        computation.ChargeableDays,
		IssuedCountClamped: snapshot.Member.IssuedCount == 0,
		Guards: []core.RowGuard{
			core.GuardRow(core.GuardTableMembers, snapshot.Member.ID, snapshot.Member.Version),
			core.GuardRow(core.GuardTableBooks, snapshot.Book.ID, snapshot.Book.Version),
			core.GuardRow(core.GuardTableLoans, loan.ID, loan.Version),
		},
	}

	if computation.HasFine() {
		plan.Fine = buildOverdueFine(*loan, computation, command.OccurredAt)
	}

	plan.Fact = core.LoanReturnedFact{
		LoanID:          loan.ID,
		MemberID:        loan.MemberID,
		BookID:          loan.BookID,
		ReturnedBy:      command.ReturnedBy,
		OverdueDays:     computation.ChargeableDays,
		FineAmount:      computation.Amount,
		NextReservation: core.BuildNextReservationSummary(snapshot.QueueHead, snapshot.QueueHeadHolder),
	}

	if plan.Fine != nil {
		fineID := plan.Fine.ID
		plan.Fact.FineID = &fineID
	}

	return core.SuccessDecision(plan)
}

func buildOverdueFine(
	loan circulation.Loan,
	computation core.FineComputation,
	returnedAt core.OccurredAtTS,
) *circulation.Fine {

	loanID := loan.ID

	return &circulation.Fine{
		ID:         uuid.Must(uuid.NewV7()),
		MemberID:   loan.MemberID,
		LoanID:     &loanID,
		Category:   circulation.FineCategoryOverdue,
		Amount:     computation.Amount,
		AmountPaid: decimal.Zero,
		Status:     circulation.FineStatusPending,
		Description: fmt.Sprintf("%d day(s) overdue, due %s, returned %s",
			computation.ChargeableDays,
			loan.DueDate.Format(dateLayout),
			returnedAt.Format(dateLayout)),
		Version:   1,
		CreatedAt: returnedAt,
		UpdatedAt: returnedAt,
	}
}
