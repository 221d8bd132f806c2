package circulation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation"
)

func Test_BuildLoanPolicy_Success(t *testing.T) {
	// act
	policy, err := circulation.BuildLoanPolicy(
		circulation.MembershipClassStudent, 5, 14, 2, decimal.RequireFromString("0.50"), 2)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, circulation.MembershipClassStudent, policy.Class)
	assert.Equal(t, 5, policy.MaxBooks)
	assert.Equal(t, 14, policy.LoanDurationDays)
	assert.Equal(t, 2, policy.RenewalLimit)
	assert.Equal(t, 2, policy.GracePeriodDays)
}

func Test_BuildLoanPolicy_ZeroRenewalLimitAndGraceAreValid(t *testing.T) {
	// act
	policy, err := circulation.BuildLoanPolicy(
		circulation.MembershipClassPublic, 3, 21, 0, decimal.Zero, 0)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 0, policy.RenewalLimit)
	assert.Equal(t, 0, policy.GracePeriodDays)
}

func Test_BuildLoanPolicy_ValidationErrors(t *testing.T) {
	finePerDay := decimal.RequireFromString("0.50")

	tests := []struct {
		name             string
		class            circulation.MembershipClass
		maxBooks         int
		loanDurationDays int
		renewalLimit     int
		finePerDay       decimal.Decimal
		gracePeriodDays  int
	}{
		{
			name:             "empty class",
			class:            "",
			maxBooks:         5,
			loanDurationDays: 14,
			renewalLimit:     2,
			finePerDay:       finePerDay,
			gracePeriodDays:  2,
		},
		{
			name:             "zero max books",
			class:            circulation.MembershipClassStudent,
			maxBooks:         0,
			loanDurationDays: 14,
			renewalLimit:     2,
			finePerDay:       finePerDay,
			gracePeriodDays:  2,
		},
		{
			name:             "negative loan duration",
			class:            circulation.MembershipClassStudent,
			maxBooks:         5,
			loanDurationDays: -1,
			renewalLimit:     2,
			finePerDay:       finePerDay,
			gracePeriodDays:  2,
		},
		{
			name:             "negative renewal limit",
			class:            circulation.MembershipClassStudent,
			maxBooks:         5,
			loanDurationDays: 14,
			renewalLimit:     -1,
			finePerDay:       finePerDay,
			gracePeriodDays:  2,
		},
		{
			name:             "negative fine per day",
			class:            circulation.MembershipClassStudent,
			maxBooks:         5,
			loanDurationDays: 14,
			renewalLimit:     2,
			finePerDay:       decimal.RequireFromString("-0.10"),
			gracePeriodDays:  2,
		},
		{
			name:             "negative grace period",
			class:            circulation.MembershipClassStudent,
			maxBooks:         5,
			loanDurationDays: 14,
			renewalLimit:     2,
			finePerDay:       finePerDay,
			gracePeriodDays:  -1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := circulation.BuildLoanPolicy(
				tc.class, tc.maxBooks, tc.loanDurationDays, tc.renewalLimit, tc.finePerDay, tc.gracePeriodDays)

			// assert
			assert.ErrorIs(t, err, circulation.ErrMisconfiguration)
		})
	}
}
