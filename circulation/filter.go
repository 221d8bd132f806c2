package circulation

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// LoanFilter describes a loan row selection independent of any query language.
// Storage engines translate it into their own dialect, e.g. SQL WHERE clauses.
// Criteria combine with AND; the statuses within a filter combine with OR.
// A zero uuid means "any member" respectively "any book", and a zero DueBefore
// means no due date bound.
type LoanFilter struct {
	statuses  []LoanStatus
	memberID  uuid.UUID
	bookID    uuid.UUID
	dueBefore time.Time
}

// Statuses returns the loan statuses to match, empty meaning any status.
func (f LoanFilter) Statuses() []LoanStatus {
	return f.statuses
}

// MemberID returns the member criterion, uuid.Nil meaning any member.
func (f LoanFilter) MemberID() uuid.UUID {
	return f.memberID
}

// BookID returns the book criterion, uuid.Nil meaning any book.
func (f LoanFilter) BookID() uuid.UUID {
	return f.bookID
}

// DueBefore returns the exclusive due date upper bound, zero meaning unbounded.
func (f LoanFilter) DueBefore() time.Time {
	return f.dueBefore
}

// HasMemberID reports whether the filter restricts to one member.
func (f LoanFilter) HasMemberID() bool {
	return f.memberID != uuid.Nil
}

// HasBookID reports whether the filter restricts to one book.
func (f LoanFilter) HasBookID() bool {
	return f.bookID != uuid.Nil
}

// HasDueBound reports whether the filter restricts the due date.
func (f LoanFilter) HasDueBound() bool {
	return !f.dueBefore.IsZero()
}

// LoanFilterBuilder builds a LoanFilter. It is designed to only allow useful
// combinations for circulation workflows:
//
//   - empty filter (any loan)
//   - (status OR status...)
//   - member
//   - book
//   - dueBefore
//   - any AND combination of the above
type LoanFilterBuilder interface {
	Matching() LoanFilterCriteriaBuilder
	MatchingAnyLoan() LoanFilter
}

// LoanFilterCriteriaBuilder adds criteria to the filter under construction and
// must eventually be finalized with Finalize().
type LoanFilterCriteriaBuilder interface {
	AnyStatusOf(statuses ...LoanStatus) LoanFilterCriteriaBuilder
	OwnedByMember(memberID uuid.UUID) LoanFilterCriteriaBuilder
	ForBook(bookID uuid.UUID) LoanFilterCriteriaBuilder
	DueBefore(deadline time.Time) LoanFilterCriteriaBuilder
	Finalize() LoanFilter
}

// loanFilterBuilder implements both builder interfaces.
type loanFilterBuilder struct {
	filter LoanFilter
}

// BuildLoanFilter creates a LoanFilterBuilder which must eventually be
// finalized with Finalize() or MatchingAnyLoan().
func BuildLoanFilter() LoanFilterBuilder {
	return loanFilterBuilder{}
}

// Matching starts adding criteria to the filter.
func (fb loanFilterBuilder) Matching() LoanFilterCriteriaBuilder {
	return fb
}

// MatchingAnyLoan finalizes an empty filter that matches every loan.
func (fb loanFilterBuilder) MatchingAnyLoan() LoanFilter {
	return LoanFilter{}
}

// AnyStatusOf adds one or multiple statuses, expecting ANY of them to match.
//
// It sanitizes the input:
//   - removing empty statuses ("")
//   - sorting the statuses
//   - removing duplicate statuses
func (fb loanFilterBuilder) AnyStatusOf(statuses ...LoanStatus) LoanFilterCriteriaBuilder {
	fb.filter.statuses = sanitizeStatuses(fb.filter.statuses, statuses)

	return fb
}

// OwnedByMember restricts the filter to loans of one member.
func (fb loanFilterBuilder) OwnedByMember(memberID uuid.UUID) LoanFilterCriteriaBuilder {
	fb.filter.memberID = memberID

	return fb
}

// ForBook restricts the filter to loans of one book.
func (fb loanFilterBuilder) ForBook(bookID uuid.UUID) LoanFilterCriteriaBuilder {
	fb.filter.bookID = bookID

	return fb
}

// DueBefore restricts the filter to loans due strictly before the deadline.
func (fb loanFilterBuilder) DueBefore(deadline time.Time) LoanFilterCriteriaBuilder {
	fb.filter.dueBefore = deadline

	return fb
}

// Finalize returns the built LoanFilter.
func (fb loanFilterBuilder) Finalize() LoanFilter {
	return fb.filter
}

func sanitizeStatuses(existing []LoanStatus, supplied []LoanStatus) []LoanStatus {
	combined := existing

	for _, status := range supplied {
		if status == "" {
			continue
		}

		combined = append(combined, status)
	}

	slices.Sort(combined)

	return slices.Compact(combined)
}
