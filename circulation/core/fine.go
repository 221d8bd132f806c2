package core

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// FineComputation is the result of the overdue fine calculation.
type FineComputation struct {
	// ChargeableDays counts the whole days past the grace-extended due date.
	ChargeableDays int

	// Amount is the fine after capping and rounding, zero when nothing accrued.
	Amount decimal.Decimal
}

// HasFine reports whether a positive fine accrued.
func (c FineComputation) HasFine() bool {
	return c.Amount.IsPositive()
}

// ComputeOverdueFine calculates the overdue fine for a loan returned (or
// evaluated) at the given time:
//
//  1. The effective due date is the due date plus the policy's grace days.
//  2. Chargeable days are the whole calendar days from the effective due date
//     to the return date, clamped to zero.
//  3. The raw fine is chargeable days times the policy's fine per day.
//  4. When the replacement price is known, the fine is capped at the price
//     plus the processing surcharge. An unknown price leaves the fine uncapped.
//  5. The result is rounded to cents, half up.
//
// The calculation is pure; callers pass the replacement price from the loaded
// book, nil when unknown.
func ComputeOverdueFine(
	dueDate time.Time,
	returnedAt time.Time,
	policy circulation.LoanPolicy,
	replacementPrice *decimal.Decimal,
) FineComputation {

	effectiveDue := AddDays(dueDate, policy.GracePeriodDays)

	chargeableDays := WholeDaysBetween(effectiveDue, returnedAt)
	if chargeableDays < 0 {
		chargeableDays = 0
	}

	fine := policy.FinePerDay.Mul(decimal.NewFromInt(int64(chargeableDays)))

	if replacementPrice != nil {
		cap := replacementPrice.Add(circulation.ProcessingSurcharge)
		if fine.GreaterThan(cap) {
			fine = cap
		}
	}

	return FineComputation{
		ChargeableDays: chargeableDays,
		Amount:         circulation.RoundToCents(fine),
	}
}

// OverdueDays counts the whole days a loan is past its due date at the given
// time, ignoring any grace period, clamped to zero. This is the raw figure
// the overdue scan reports; return receipts instead report the chargeable
// count from ComputeOverdueFine.
func OverdueDays(dueDate time.Time, at time.Time) int {
	days := WholeDaysBetween(dueDate, at)
	if days < 0 {
		return 0
	}

	return days
}
