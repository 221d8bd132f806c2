package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FineCategory classifies why a fine was assessed.
type FineCategory string

const (
	FineCategoryOverdue FineCategory = "overdue"
	FineCategoryLost    FineCategory = "lost"
	FineCategoryDamage  FineCategory = "damage"
	FineCategoryOther   FineCategory = "other"
)

// FineStatus is the settlement state of a fine.
type FineStatus string

const (
	FineStatusPending FineStatus = "pending"
	FineStatusPaid    FineStatus = "paid"
	FineStatusWaived  FineStatus = "waived"
)

// Fine is a monetary charge against a member. LoanID links overdue fines to
// the loan that caused them and is nil for manually assessed fines. AmountPaid
// accumulates partial payments and never exceeds Amount.
type Fine struct {
	ID          uuid.UUID       `db:"id"`
	MemberID    uuid.UUID       `db:"member_id"`
	LoanID      *uuid.UUID      `db:"loan_id"`
	Category    FineCategory    `db:"category"`
	Amount      decimal.Decimal `db:"amount"`
	AmountPaid  decimal.Decimal `db:"amount_paid"`
	Status      FineStatus      `db:"status"`
	Description string          `db:"description"`
	Version     int64           `db:"version"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// Outstanding returns the unpaid remainder of the fine.
func (f Fine) Outstanding() decimal.Decimal {
	return f.Amount.Sub(f.AmountPaid)
}

// IsSettled reports whether no further payment is owed.
func (f Fine) IsSettled() bool {
	return f.Status == FineStatusPaid || f.Status == FineStatusWaived
}
