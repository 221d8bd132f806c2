package renewloan

import (
	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Decide implements the business logic to determine whether an issued loan can be renewed.
// This is a pure function with no side effects - it takes the loaded snapshot and a command
// and returns the plan that should be applied based on the business rules.
//
// Business Rules:
//
//	GIVEN: An issued loan with LoanID
//	WHEN: RenewLoan command is received
//	THEN: The due date moves forward by one policy loan duration, chained
//	      from the current due date, and the renewal count grows by one
//	ERROR: not-found if the loan does not exist
//	ERROR: "only issued loans can be renewed" if the loan was already returned
//	ERROR: misconfiguration if no policy exists for the borrower's class
//	ERROR: "renewal limit reached" if the policy's limit is used up
//	ERROR: "reserved by another member" if another member holds the queue head
//
// Being overdue does not block a renewal; the overdue fine is settled at
// return time regardless.
func Decide(snapshot core.RenewSnapshot, command Command) core.DecisionResult[core.RenewPlan] {
	loan := snapshot.Loan
	if loan == nil {
		return core.ErrorDecision[core.RenewPlan](circulation.NotFoundError(
			"loan %s not found", snapshot.LoanID))
	}

	if !loan.IsOpen() {
		return core.ErrorDecision[core.RenewPlan](circulation.InvalidStateError(
			"loan %s is %q, only issued loans can be renewed", loan.ID, loan.Status))
	}

	if snapshot.Member == nil {
		return core.ErrorDecision[core.RenewPlan](circulation.NotFoundError(
			"member %s referenced by loan %s not found", loan.MemberID, loan.ID))
	}

	if snapshot.Policy == nil {
		return core.ErrorDecision[core.RenewPlan](circulation.MisconfigurationError(
			"no loan policy configured for membership class %q", snapshot.Member.Class))
	}

	if loan.RenewalCount >= snapshot.Policy.RenewalLimit {
		return core.ErrorDecision[core.RenewPlan](circulation.IneligibleError(
			"loan %s has reached the renewal limit, %d of %d renewals used",
			loan.ID, loan.RenewalCount, snapshot.Policy.RenewalLimit))
	}

	if core.ReservationBlocksRenewal(snapshot.QueueHead, loan.MemberID) {
		return core.ErrorDecision[core.RenewPlan](circulation.ConflictError(
			"book %s is reserved by another member", loan.BookID))
	}

	// A renewal always extends by a full period from the old due date, no
	// matter how early it is requested.
	newDueDate := core.AddDays(loan.DueDate, snapshot.Policy.LoanDurationDays)

	return core.SuccessDecision(core.RenewPlan{
		LoanID:          loan.ID,
		NewDueDate:      newDueDate,
		NewRenewalCount: loan.RenewalCount + 1,
		RenewedAt:       command.OccurredAt,
		Guards: []core.RowGuard{
			core.GuardRow(core.GuardTableLoans, loan.ID, loan.Version),
		},
		Fact: core.LoanRenewedFact{
			LoanID:          loan.ID,
			MemberID:        loan.MemberID,
			BookID:          loan.BookID,
			RenewedBy:       command.RenewedBy,
			PreviousDueDate: loan.DueDate,
			NewDueDate:      newDueDate,
			RenewalCount:    loan.RenewalCount + 1,
		},
	})
}
