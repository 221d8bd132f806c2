package memberloans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// MemberLoanInfo represents one loan of the member, past or present.
type MemberLoanInfo struct {
	LoanID       uuid.UUID              `json:"loanId"`
	BookID       uuid.UUID              `json:"bookId"`
	BookTitle    string                 `json:"bookTitle"`
	BookAuthor   string                 `json:"bookAuthor"`
	IssuedAt     time.Time              `json:"issuedAt"`
	DueDate      time.Time              `json:"dueDate"`
	ReturnedAt   *time.Time             `json:"returnedAt,omitempty"`
	RenewalCount int                    `json:"renewalCount"`
	Status       circulation.LoanStatus `json:"status"`

	// IsOverdue is derived at query time: the loan is still out and its due
	// day has fully passed.
	IsOverdue   bool `json:"isOverdue"`
	OverdueDays int  `json:"overdueDays"`

	// EstimatedFine is what a return at the query time would cost, zero for
	// closed loans and loans inside the grace window.
	EstimatedFine decimal.Decimal `json:"estimatedFine"`

	// FineAmount is the fine actually assessed at return time, zero while
	// the loan is open.
	FineAmount decimal.Decimal `json:"fineAmount"`
}

// MemberLoans represents the query result containing the member's loans,
// sorted by issue time (oldest first). MemberName and MemberEmail are empty
// when the member has no matching loans.
type MemberLoans struct {
	MemberID    uuid.UUID        `json:"memberId"`
	MemberName  string           `json:"memberName"`
	MemberEmail string           `json:"memberEmail"`
	Loans       []MemberLoanInfo `json:"loans"`
	Count       int              `json:"count"`
}
