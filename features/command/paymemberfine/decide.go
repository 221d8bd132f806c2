package paymemberfine

import (
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Decide implements the business logic to determine whether a fine payment can be recorded.
// This is a pure function with no side effects - it takes the loaded snapshot and a command
// and returns the plan that should be applied based on the business rules.
//
// Business Rules:
//
//	GIVEN: A fine with FineID
//	WHEN: PayMemberFine command is received
//	THEN: The paid amount grows by the payment, the fine flips to paid when
//	      fully covered, and the member's outstanding balance shrinks by the
//	      payment (floor-clamped at zero), all in one plan
//	ERROR: "payment must be positive" for zero or negative payments
//	ERROR: not-found if the fine does not exist
//	ERROR: "waived fines cannot accept payments" for waived fines
//	ERROR: "exceeds the outstanding balance" when overpaying
//	IDEMPOTENCY: If the fine is already paid, no plan is produced (no-op)
func Decide(snapshot core.PayFineSnapshot, command Command) core.DecisionResult[core.PayFinePlan] {
	if !command.Payment.IsPositive() {
		return core.ErrorDecision[core.PayFinePlan](circulation.ValidationError(
			"payment must be positive, got %s", circulation.FormatAmount(command.Payment)))
	}

	fine := snapshot.Fine
	if fine == nil {
		return core.ErrorDecision[core.PayFinePlan](circulation.NotFoundError(
			"fine %s not found", snapshot.FineID))
	}

	if snapshot.Member == nil {
		return core.ErrorDecision[core.PayFinePlan](circulation.NotFoundError(
			"member %s referenced by fine %s not found", fine.MemberID, fine.ID))
	}

	if fine.Status == circulation.FineStatusWaived {
		return core.ErrorDecision[core.PayFinePlan](circulation.InvalidStateError(
			"fine %s was waived, waived fines cannot accept payments", fine.ID))
	}

	if fine.Status == circulation.FineStatusPaid {
		return core.IdempotentDecision[core.PayFinePlan]() // already settled, nothing left to pay
	}

	outstanding := fine.Outstanding()
	if command.Payment.GreaterThan(outstanding) {
		return core.ErrorDecision[core.PayFinePlan](circulation.IneligibleError(
			"payment of %s exceeds the outstanding balance of %s on fine %s",
			circulation.FormatAmount(command.Payment),
			circulation.FormatAmount(outstanding),
			fine.ID))
	}

	newAmountPaid := fine.AmountPaid.Add(command.Payment)

	newStatus := circulation.FineStatusPending
	if newAmountPaid.GreaterThanOrEqual(fine.Amount) {
		newStatus = circulation.FineStatusPaid
	}

	// The member's balance is a maintained counter; it can drift below the sum
	// of open fines after manual corrections, so the reported remainder clamps
	// at zero just like the stored one.
	remainingBalance := snapshot.Member.OutstandingFines.Sub(command.Payment)
	if remainingBalance.IsNegative() {
		remainingBalance = decimal.Zero
	}

	return core.SuccessDecision(core.PayFinePlan{
		FineID:           fine.ID,
		MemberID:         fine.MemberID,
		NewAmountPaid:    newAmountPaid,
		NewFineStatus:    newStatus,
		BalanceReduction: command.Payment,
		PaidAt:           command.OccurredAt,
		Guards: []core.RowGuard{
			core.GuardRow(core.GuardTableMembers, snapshot.Member.ID, snapshot.Member.Version),
			core.GuardRow(core.GuardTableFines, fine.ID, fine.Version),
		},
		Fact: core.FinePaidFact{
			FineID:                 fine.ID,
			MemberID:               fine.MemberID,
			PaidBy:                 command.PaidBy,
			Payment:                command.Payment,
			FineStatus:             newStatus,
			MemberOutstandingFines: remainingBalance,
		},
	})
}
