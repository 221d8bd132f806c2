package circulation

import (
	"github.com/shopspring/decimal"
)

// LoanPolicy holds the circulation rules for one membership class: how many
// books may be out at once, how long a loan runs, how often it can be renewed,
// and how overdue fines accrue. Policies are configuration, loaded per class;
// a missing policy surfaces as ErrMisconfiguration during eligibility checks.
type LoanPolicy struct {
	Class            MembershipClass `db:"membership_class"`
	MaxBooks         int             `db:"max_books"`
	LoanDurationDays int             `db:"loan_duration_days"`
	RenewalLimit     int             `db:"renewal_limit"`
	FinePerDay       decimal.Decimal `db:"fine_per_day"`
	GracePeriodDays  int             `db:"grace_period_days"`
}

// BuildLoanPolicy creates a validated LoanPolicy.
// It returns an ErrMisconfiguration when any bound is violated: MaxBooks and
// LoanDurationDays must be positive, RenewalLimit and GracePeriodDays must not
// be negative, and FinePerDay must not be negative.
func BuildLoanPolicy(
	class MembershipClass,
	maxBooks int,
	loanDurationDays int,
	renewalLimit int,
	finePerDay decimal.Decimal,
	gracePeriodDays int,
) (LoanPolicy, error) {

	if class == "" {
		return LoanPolicy{}, MisconfigurationError("loan policy requires a membership class")
	}

	if maxBooks <= 0 {
		return LoanPolicy{}, MisconfigurationError("loan policy for class %q has non-positive max books: %d", class, maxBooks)
	}

	if loanDurationDays <= 0 {
		return LoanPolicy{}, MisconfigurationError("loan policy for class %q has non-positive loan duration: %d days", class, loanDurationDays)
	}

	if renewalLimit < 0 {
		return LoanPolicy{}, MisconfigurationError("loan policy for class %q has negative renewal limit: %d", class, renewalLimit)
	}

	if finePerDay.IsNegative() {
		return LoanPolicy{}, MisconfigurationError("loan policy for class %q has negative fine per day: %s", class, FormatAmount(finePerDay))
	}

	if gracePeriodDays < 0 {
		return LoanPolicy{}, MisconfigurationError("loan policy for class %q has negative grace period: %d days", class, gracePeriodDays)
	}

	return LoanPolicy{
		Class:            class,
		MaxBooks:         maxBooks,
		LoanDurationDays: loanDurationDays,
		RenewalLimit:     renewalLimit,
		FinePerDay:       finePerDay,
		GracePeriodDays:  gracePeriodDays,
	}, nil
}

// DefaultLoanPolicies returns the seed policies for the built-in membership
// classes. Deployments adjust them through configuration management; the
// engine only ever reads them.
func DefaultLoanPolicies() []LoanPolicy {
	return []LoanPolicy{
		{
			Class:            MembershipClassStudent,
			MaxBooks:         5,
			LoanDurationDays: 14,
			RenewalLimit:     2,
			FinePerDay:       decimal.RequireFromString("1.00"),
			GracePeriodDays:  2,
		},
		{
			Class:            MembershipClassFaculty,
			MaxBooks:         10,
			LoanDurationDays: 30,
			RenewalLimit:     3,
			FinePerDay:       decimal.RequireFromString("0.50"),
			GracePeriodDays:  3,
		},
		{
			Class:            MembershipClassPublic,
			MaxBooks:         3,
			LoanDurationDays: 14,
			RenewalLimit:     1,
			FinePerDay:       decimal.RequireFromString("1.00"),
			GracePeriodDays:  0,
		},
	}
}
