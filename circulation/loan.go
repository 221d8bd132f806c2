package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan. There is no stored "overdue"
// status: overdue is derived from DueDate and the current time, so a loan can
// never be stuck in a stale overdue state.
type LoanStatus string

const (
	LoanStatusIssued   LoanStatus = "issued"
	LoanStatusReturned LoanStatus = "returned"
)

// Loan records one book copy issued to one member. FineAmount is the overdue
// fine assessed at return time, zero until then. ReturnedAt and ReturnedBy are
// nil while the loan is open.
type Loan struct {
	ID           uuid.UUID       `db:"id"`
	MemberID     uuid.UUID       `db:"member_id"`
	BookID       uuid.UUID       `db:"book_id"`
	IssuedAt     time.Time       `db:"issued_at"`
	DueDate      time.Time       `db:"due_date"`
	ReturnedAt   *time.Time      `db:"returned_at"`
	RenewalCount int             `db:"renewal_count"`
	FineAmount   decimal.Decimal `db:"fine_amount"`
	Status       LoanStatus      `db:"status"`
	IssuedBy     uuid.UUID       `db:"issued_by"`
	ReturnedBy   *uuid.UUID      `db:"returned_by"`
	Version      int64           `db:"version"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// IsOpen reports whether the loan has not been returned yet.
func (l Loan) IsOpen() bool {
	return l.Status == LoanStatusIssued
}

// IsOverdue reports whether the loan is open and past its due date at the
// given time. Grace periods do not move the due date; they only soften the
// fine calculation.
func (l Loan) IsOverdue(at time.Time) bool {
	return l.Status == LoanStatusIssued && l.DueDate.Before(at)
}
