package core

import (
	"github.com/openshelf/circulation-engine-go/circulation"
)

// CheckIssueEligibility runs the ordered eligibility checks for issuing a book
// copy to a member. It returns nil when every check passes, otherwise the
// first failure as a typed error carrying the concrete numbers that triggered
// it. The checks short-circuit, so a suspended member with a full shelf is
// reported as suspended, not as over the limit.
//
// Order of checks:
//
//  1. The member exists.
//  2. The member's account is active.
//  3. A loan policy is configured for the member's class.
//  4. The member's issued count is below the policy's maximum.
//  5. The member's outstanding fines do not exceed the ceiling.
//  6. The book exists and has not been removed from the catalog.
//  7. The book has at least one available copy.
//  8. The member has no open loan for this book already.
//
// Reservation queue effects are not part of eligibility, they are resolved
// separately by ResolveReservationForIssue.
func CheckIssueEligibility(snapshot IssueSnapshot) error {
	if snapshot.Member == nil {
		return circulation.NotFoundError("member %s not found", snapshot.MemberID)
	}

	if !snapshot.Member.CanBorrow() {
		return circulation.IneligibleError(
			"member %s cannot borrow, account status is %q",
			snapshot.MemberID, snapshot.Member.Status)
	}

	if snapshot.Policy == nil {
		return circulation.MisconfigurationError(
			"no loan policy configured for membership class %q", snapshot.Member.Class)
	}

	if snapshot.Member.IssuedCount >= snapshot.Policy.MaxBooks {
		return circulation.IneligibleError(
			"member %s has reached the loan limit, %d of %d books issued",
			snapshot.MemberID, snapshot.Member.IssuedCount, snapshot.Policy.MaxBooks)
	}

	if snapshot.Member.OutstandingFines.GreaterThan(circulation.OutstandingFineCeiling) {
		return circulation.IneligibleError(
			"outstanding fines of %s exceed the %s limit",
			circulation.FormatAmount(snapshot.Member.OutstandingFines),
			circulation.FormatAmount(circulation.OutstandingFineCeiling))
	}

	if snapshot.Book == nil {
		return circulation.NotFoundError("book %s not found", snapshot.BookID)
	}

	if snapshot.Book.Deleted {
		return circulation.IneligibleError(
			"book %s has been removed from the catalog", snapshot.BookID)
	}

	if !snapshot.Book.HasAvailableCopy() {
		return circulation.IneligibleError(
			"book %s has no available copies, all %d copies are issued",
			snapshot.BookID, snapshot.Book.TotalCopies)
	}

	if snapshot.HasOpenLoanForBook {
		return circulation.ConflictError(
			"member %s already has an issued loan for book %s",
			snapshot.MemberID, snapshot.BookID)
	}

	return nil
}
