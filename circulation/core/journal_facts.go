package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// JournalFact is the typed payload of a journal entry. Facts are plain data
// produced by decisions; the shell serializes them to JSON.
type JournalFact interface {
	// FactType returns the journal entry type this fact is recorded under.
	FactType() string
}

// LoanIssuedFact records a book copy issued to a member.
type LoanIssuedFact struct {
	LoanID                 uuid.UUID  `json:"loanId"`
	MemberID               uuid.UUID  `json:"memberId"`
	BookID                 uuid.UUID  `json:"bookId"`
	IssuedBy               uuid.UUID  `json:"issuedBy"`
	DueDate                time.Time  `json:"dueDate"`
	FulfilledReservationID *uuid.UUID `json:"fulfilledReservationId,omitempty"`
}

// FactType returns the journal entry type for issued loans.
func (f LoanIssuedFact) FactType() string {
	return circulation.JournalEntryTypeLoanIssued
}

// LoanReturnedFact records a book copy returned by a member, including the
// assessed fine and the next reservation holder to notify, when present.
type LoanReturnedFact struct {
	LoanID          uuid.UUID               `json:"loanId"`
	MemberID        uuid.UUID               `json:"memberId"`
	BookID          uuid.UUID               `json:"bookId"`
	ReturnedBy      uuid.UUID               `json:"returnedBy"`
	OverdueDays     int                     `json:"overdueDays"`
	FineAmount      decimal.Decimal         `json:"fineAmount"`
	FineID          *uuid.UUID              `json:"fineId,omitempty"`
	NextReservation *NextReservationSummary `json:"nextReservation,omitempty"`
}

// FactType returns the journal entry type for returned loans.
func (f LoanReturnedFact) FactType() string {
	return circulation.JournalEntryTypeLoanReturned
}

// LoanRenewedFact records a loan renewal.
type LoanRenewedFact struct {
	LoanID          uuid.UUID `json:"loanId"`
	MemberID        uuid.UUID `json:"memberId"`
	BookID          uuid.UUID `json:"bookId"`
	RenewedBy       uuid.UUID `json:"renewedBy"`
	PreviousDueDate time.Time `json:"previousDueDate"`
	NewDueDate      time.Time `json:"newDueDate"`
	RenewalCount    int       `json:"renewalCount"`
}

// FactType returns the journal entry type for renewed loans.
func (f LoanRenewedFact) FactType() string {
	return circulation.JournalEntryTypeLoanRenewed
}

// FinePaidFact records a payment against a fine.
type FinePaidFact struct {
	FineID   uuid.UUID       `json:"fineId"`
	MemberID uuid.UUID       `json:"memberId"`
	PaidBy   uuid.UUID       `json:"paidBy"`
	Payment  decimal.Decimal `json:"payment"`

	// FineStatus is the fine's status after the payment.
	FineStatus circulation.FineStatus `json:"fineStatus"`

	// MemberOutstandingFines is the member's balance after the payment.
	MemberOutstandingFines decimal.Decimal `json:"memberOutstandingFines"`
}

// FactType returns the journal entry type for fine payments.
func (f FinePaidFact) FactType() string {
	return circulation.JournalEntryTypeFinePaid
}
