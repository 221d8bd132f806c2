package overdueloans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverdueLoanInfo represents one overdue loan with the context a follow-up
// action needs: who has the book, which book, and what the delay costs.
type OverdueLoanInfo struct {
	LoanID      uuid.UUID `json:"loanId"`
	MemberID    uuid.UUID `json:"memberId"`
	MemberName  string    `json:"memberName"`
	MemberEmail string    `json:"memberEmail"`
	BookID      uuid.UUID `json:"bookId"`
	BookTitle   string    `json:"bookTitle"`
	IssuedAt    time.Time `json:"issuedAt"`
	DueDate     time.Time `json:"dueDate"`

	// OverdueDays counts whole days past the due date with no grace
	// subtracted. The grace period only softens EstimatedFine.
	OverdueDays int `json:"overdueDays"`

	// EstimatedFine is the fine that would be assessed if the loan were
	// returned at the scan time, grace and replacement price cap applied.
	EstimatedFine decimal.Decimal `json:"estimatedFine"`
}

// OverdueLoans represents the query result containing all overdue loans,
// sorted most overdue first.
type OverdueLoans struct {
	AsOf  time.Time         `json:"asOf"`
	Loans []OverdueLoanInfo `json:"loans"`
	Count int               `json:"count"`
}
