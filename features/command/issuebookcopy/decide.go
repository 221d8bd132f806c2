package issuebookcopy

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Decide implements the business logic to determine whether a book copy should be issued to a member.
// This is a pure function with no side effects - it takes the loaded snapshot and a command
// and returns the plan that should be applied based on the business rules.
//
// Business Rules:
//
//	GIVEN: A member with MemberID and a book with BookID
//	WHEN: IssueBookCopy command is received
//	THEN: A loan is created, the book loses one available copy, the member's
//	      issued count grows by one, and the member's own head reservation
//	      (if any) is fulfilled, all in one plan
//	ERROR: the first failing eligibility check (not-found, ineligible,
//	       misconfiguration or conflict), carrying the concrete numbers
//	ERROR: "reserved by another member" if another member holds the queue head
//
// The due date is the issue time plus the policy's loan duration in days,
// truncated to the start of that day so due dates compare by calendar day.
func Decide(snapshot core.IssueSnapshot, command Command) core.DecisionResult[core.IssuePlan] {
	if err := core.CheckIssueEligibility(snapshot); err != nil {
		return core.ErrorDecision[core.IssuePlan](err)
	}

	resolution := core.ResolveReservationForIssue(snapshot.QueueHead, command.MemberID)
	if resolution == core.ReservationResolutionBlockedByOther {
		return core.ErrorDecision[core.IssuePlan](circulation.ConflictError(
			"book %s is reserved by another member", command.BookID))
	}

	dueDate := core.StartOfDay(core.AddDays(command.OccurredAt, snapshot.Policy.LoanDurationDays))

	loan := circulation.Loan{
		ID:           uuid.Must(uuid.NewV7()),
		MemberID:     command.MemberID,
		BookID:       command.BookID,
		IssuedAt:     command.OccurredAt,
		DueDate:      dueDate,
		RenewalCount: 0,
		FineAmount:   decimal.Zero,
		Status:       circulation.LoanStatusIssued,
		IssuedBy:     command.IssuedBy,
		Version:      1,
		CreatedAt:    command.OccurredAt,
		UpdatedAt:    command.OccurredAt,
	}

	plan := core.IssuePlan{
		Loan: loan,
		Guards: []core.RowGuard{
			core.GuardRow(core.GuardTableMembers, snapshot.Member.ID, snapshot.Member.Version),
			core.GuardRow(core.GuardTableBooks, snapshot.Book.ID, snapshot.Book.Version),
		},
		Fact: core.LoanIssuedFact{
			LoanID:   loan.ID,
			MemberID: loan.MemberID,
			BookID:   loan.BookID,
			IssuedBy: loan.IssuedBy,
			DueDate:  loan.DueDate,
		},
	}

	if resolution == core.ReservationResolutionFulfillableBySelf {
		plan.FulfillReservationID = snapshot.QueueHead.ID
		plan.Guards = append(plan.Guards,
			core.GuardRow(core.GuardTableReservations, snapshot.QueueHead.ID, snapshot.QueueHead.Version))

		reservationID := snapshot.QueueHead.ID
		plan.Fact.FulfilledReservationID = &reservationID
	}

	return core.SuccessDecision(plan)
}
