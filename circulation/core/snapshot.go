package core

import (
	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// Snapshots are consistent reads of the rows a command decision needs. The
// storage engine loads them outside any transaction; the Version fields of the
// contained records are later verified under row locks when the plan is
// applied, so a decision made on a stale snapshot can never be committed.
//
// Pointer fields are nil when the referenced row does not exist. The requested
// identifiers are echoed alongside so decisions can report not-found errors
// with the IDs the caller used.

// IssueSnapshot carries the state for an issue decision.
type IssueSnapshot struct {
	MemberID uuid.UUID
	BookID   uuid.UUID

	Member *circulation.Member
	Policy *circulation.LoanPolicy
	Book   *circulation.Book

	// HasOpenLoanForBook is true when the member already has an issued loan
	// for this book.
	HasOpenLoanForBook bool

	// QueueHead is the oldest active reservation for the book, nil when the
	// queue is empty.
	QueueHead *circulation.Reservation
}

// ReturnSnapshot carries the state for a return decision. The loan is located
// by loan ID or by the (book, member) pair; Loan is nil when neither finds one.
type ReturnSnapshot struct {
	LoanID   uuid.UUID
	BookID   uuid.UUID
	MemberID uuid.UUID

	Loan   *circulation.Loan
	Member *circulation.Member
	Policy *circulation.LoanPolicy
	Book   *circulation.Book

	// QueueHead is the oldest active reservation for the returned book, read
	// so the receipt and journal can name the member to notify. The return
	// never mutates it.
	QueueHead *circulation.Reservation

	// QueueHeadHolder is the member record of the queue head's holder, nil
	// when there is no queue head.
	QueueHeadHolder *circulation.Member
}

// RenewSnapshot carries the state for a renew decision.
type RenewSnapshot struct {
	LoanID uuid.UUID

	Loan   *circulation.Loan
	Member *circulation.Member
	Policy *circulation.LoanPolicy

	// QueueHead is the oldest active reservation for the loan's book, nil when
	// the queue is empty. A head held by another member blocks the renewal.
	QueueHead *circulation.Reservation
}

// PayFineSnapshot carries the state for a fine payment decision.
type PayFineSnapshot struct {
	FineID uuid.UUID

	Fine   *circulation.Fine
	Member *circulation.Member
}
