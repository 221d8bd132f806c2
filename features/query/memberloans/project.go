package memberloans

import (
	"slices"
	"strings"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Project implements the query logic to list one member's loans. This is a
// pure function with no side effects - it takes the loaded loan details and
// returns the projected member view.
//
// Query Logic:
//
//	GIVEN: Loan details of the member (row data joined with book and policy)
//	WHEN: MemberLoans query is executed
//	THEN: MemberLoans struct is returned, sorted by issue time (oldest first)
//	INCLUDES: All loans of the member, or only the open ones when requested
//	DETAILS: Derived overdue flag, raw overdue day count, estimated fine for
//	         open overdue loans, and the fine assessed on returned ones
func Project(details []core.LoanDetail, query Query) MemberLoans {
	cutoff := core.StartOfDay(query.AsOf)

	result := MemberLoans{
		MemberID: query.MemberID,
	}

	loans := make([]MemberLoanInfo, 0, len(details))

	for _, detail := range details {
		if detail.Loan.MemberID != query.MemberID {
			continue
		}

		// Every row carries the same member columns
		result.MemberName = detail.MemberName
		result.MemberEmail = detail.MemberEmail

		if query.OnlyOpen && !detail.Loan.IsOpen() {
			continue
		}

		isOverdue := detail.Loan.IsOverdue(cutoff)

		overdueDays := 0
		if isOverdue {
			overdueDays = core.OverdueDays(detail.Loan.DueDate, query.AsOf)
		}

		loans = append(loans, MemberLoanInfo{
			LoanID:        detail.Loan.ID,
			BookID:        detail.Loan.BookID,
			BookTitle:     detail.BookTitle,
			BookAuthor:    detail.BookAuthor,
			IssuedAt:      detail.Loan.IssuedAt,
			DueDate:       detail.Loan.DueDate,
			ReturnedAt:    detail.Loan.ReturnedAt,
			RenewalCount:  detail.Loan.RenewalCount,
			Status:        detail.Loan.Status,
			IsOverdue:     isOverdue,
			OverdueDays:   overdueDays,
			EstimatedFine: detail.EstimatedFine(query.AsOf),
			FineAmount:    detail.Loan.FineAmount,
		})
	}

	slices.SortFunc(loans, func(a, b MemberLoanInfo) int {
		if c := a.IssuedAt.Compare(b.IssuedAt); c != 0 {
			return c
		}

		return strings.Compare(a.LoanID.String(), b.LoanID.String())
	})

	result.Loans = loans
	result.Count = len(loans)

	return result
}

// BuildLoanFilter creates the filter selecting the loan rows which are
// relevant for this query/use-case: the member's loans, restricted to open
// ones when the query asks for them.
func BuildLoanFilter(query Query) circulation.LoanFilter {
	if query.OnlyOpen {
		return circulation.BuildLoanFilter().
			Matching().
			OwnedByMember(query.MemberID).
			AnyStatusOf(circulation.LoanStatusIssued).
			Finalize()
	}

	return circulation.BuildLoanFilter().
		Matching().
		OwnedByMember(query.MemberID).
		Finalize()
}
