package core

import (
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// LoanDetail is a loan row joined with the member, book, and policy context a
// reporting query needs. The storage engine produces these from a LoanFilter;
// the query projections turn them into result rows.
type LoanDetail struct {
	Loan circulation.Loan

	MemberName  string
	MemberEmail string
	MemberClass circulation.MembershipClass

	BookTitle        string
	BookAuthor       string
	ReplacementPrice *decimal.Decimal

	// Policy is the loan policy for the member's class, nil when none is
	// configured. Fine estimates are zero without a policy.
	Policy *circulation.LoanPolicy
}

// EstimatedFine computes the fine that would be assessed if the loan were
// returned at the given time: grace period and replacement price cap applied.
// It returns zero for loans that are not open, not overdue past grace, or
// whose member class has no configured policy.
func (d LoanDetail) EstimatedFine(at OccurredAtTS) decimal.Decimal {
	if d.Policy == nil || !d.Loan.IsOpen() {
		return decimal.Zero
	}

	return ComputeOverdueFine(d.Loan.DueDate, at, *d.Policy, d.ReplacementPrice).Amount
}
