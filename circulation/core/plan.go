package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// GuardTable names a table whose row versions the engine verifies under lock.
type GuardTable string

const (
	GuardTableMembers      GuardTable = "members"
	GuardTableBooks        GuardTable = "books"
	GuardTableLoans        GuardTable = "loans"
	GuardTableFines        GuardTable = "fines"
	GuardTableReservations GuardTable = "reservations"
)

// RowGuard pins one row to the version a decision was based on. When the
// engine applies a plan it locks the guarded rows, compares their current
// versions against the expected ones, and aborts with ErrConcurrencyConflict
// on any mismatch. Every mutation the engine applies bumps the row's version.
type RowGuard struct {
	Table   GuardTable
	ID      uuid.UUID
	Version int64
}

// GuardRow builds a RowGuard.
func GuardRow(table GuardTable, id uuid.UUID, version int64) RowGuard {
	return RowGuard{Table: table, ID: id, Version: version}
}

// Plans describe the mutations a successful decision wants applied. The
// engine executes each plan in a single transaction: lock and verify the
// guards, apply the mutations, append the journal entry, commit.

// IssuePlan creates a loan, decrements the book's available copies,
// increments the member's issued count, and optionally fulfills the member's
// own head reservation.
type IssuePlan struct {
	// Loan is the complete row to insert, including identifiers and due date.
	Loan circulation.Loan

	// FulfillReservationID is the member's own queue head reservation to mark
	// fulfilled, uuid.Nil when no reservation is involved.
	FulfillReservationID uuid.UUID

	Guards []RowGuard
	Fact   LoanIssuedFact
}

// ReturnPlan closes a loan, increments the book's available copies,
// decrements the member's issued count, and assesses an overdue fine when one
// accrued.
type ReturnPlan struct {
	LoanID   uuid.UUID
	MemberID uuid.UUID
	BookID   uuid.UUID

	ReturnedAt OccurredAtTS
	ReturnedBy uuid.UUID

	// OverdueDays counts the chargeable days past the grace-extended due
	// date, the same count the fine is computed from. Zero when the loan came
	// back within the grace window.
	OverdueDays int

	// Fine is the complete fine row to insert, nil when no fine accrued. Its
	// amount is also added to the member's outstanding fines balance.
	Fine *circulation.Fine

	// IssuedCountClamped is true when the member's issued count was already
	// zero in the snapshot and the decrement will clamp at zero. The engine
	// logs a warning, since the counter and the loan rows disagree.
	IssuedCountClamped bool

	Guards []RowGuard
	Fact   LoanReturnedFact
}

// RenewPlan moves a loan's due date forward and counts the renewal. It
// touches only the loan row.
type RenewPlan struct {
	LoanID uuid.UUID

	NewDueDate      OccurredAtTS
	NewRenewalCount int
	RenewedAt       OccurredAtTS

	Guards []RowGuard
	Fact   LoanRenewedFact
}

// PayFinePlan records a payment on a fine and reduces the member's
// outstanding fines balance.
type PayFinePlan struct {
	FineID   uuid.UUID
	MemberID uuid.UUID

	NewAmountPaid decimal.Decimal
	NewFineStatus circulation.FineStatus

	// BalanceReduction is subtracted from the member's outstanding fines,
	// floored at zero.
	BalanceReduction decimal.Decimal

	PaidAt OccurredAtTS

	Guards []RowGuard
	Fact   FinePaidFact
}
