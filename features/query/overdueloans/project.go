package overdueloans

import (
	"slices"
	"strings"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Project implements the query logic to determine all loans overdue at the
// query time. This is a pure function with no side effects - it takes the
// loaded loan details and returns the projected scan result.
//
// Query Logic:
//
//	GIVEN: Loan details for issued loans (row data joined with member, book, and policy)
//	WHEN: OverdueLoans query is executed
//	THEN: OverdueLoans struct is returned, sorted most overdue first
//	INCLUDES: Issued loans whose due date lies before the start of the query day
//	EXCLUDES: Returned loans and loans due today or later
//	DETAILS: Raw overdue day count plus an estimated fine with grace and cap applied
func Project(details []core.LoanDetail, query Query) OverdueLoans {
	cutoff := core.StartOfDay(query.AsOf)

	overdueLoans := make([]OverdueLoanInfo, 0, len(details))

	for _, detail := range details {
		if !detail.Loan.IsOpen() || !detail.Loan.DueDate.Before(cutoff) {
			continue
		}

		overdueLoans = append(overdueLoans, OverdueLoanInfo{
			LoanID:        detail.Loan.ID,
			MemberID:      detail.Loan.MemberID,
			MemberName:    detail.MemberName,
			MemberEmail:   detail.MemberEmail,
			BookID:        detail.Loan.BookID,
			BookTitle:     detail.BookTitle,
			IssuedAt:      detail.Loan.IssuedAt,
			DueDate:       detail.Loan.DueDate,
			OverdueDays:   core.OverdueDays(detail.Loan.DueDate, query.AsOf),
			EstimatedFine: detail.EstimatedFine(query.AsOf),
		})
	}

	// Sort by DueDate (most overdue first), loan id as a stable tiebreak
	slices.SortFunc(overdueLoans, func(a, b OverdueLoanInfo) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}

		return strings.Compare(a.LoanID.String(), b.LoanID.String())
	})

	return OverdueLoans{
		AsOf:  query.AsOf,
		Loans: overdueLoans,
		Count: len(overdueLoans),
	}
}

// BuildLoanFilter creates the filter selecting the loan rows which are
// relevant for this query/use-case: issued loans already past due at the
// start of the query day.
func BuildLoanFilter(query Query) circulation.LoanFilter {
	return circulation.BuildLoanFilter().
		Matching().
		AnyStatusOf(circulation.LoanStatusIssued).
		DueBefore(core.StartOfDay(query.AsOf)).
		Finalize()
}
