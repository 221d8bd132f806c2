package circulation

import "github.com/shopspring/decimal"

// Monetary business constants. decimal.Decimal values cannot be Go constants,
// so they are package variables that must not be mutated.
var (
	// OutstandingFineCeiling is the maximum fine balance a member may carry
	// and still borrow. Members at or below the ceiling remain eligible.
	OutstandingFineCeiling = decimal.NewFromInt(10)

	// ProcessingSurcharge is added to a book's replacement price when capping
	// an overdue fine.
	ProcessingSurcharge = decimal.NewFromInt(5)
)

// RoundToCents rounds a monetary amount to two decimal places, half up.
func RoundToCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// FormatAmount renders a monetary amount with two decimal places for
// operator-facing messages, e.g. "10.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
