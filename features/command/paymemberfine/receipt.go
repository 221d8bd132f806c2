package paymemberfine

import (
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Receipt is the success payload of a fine payment: the fine after the
// payment, the amount taken, and the member's remaining fine balance.
type Receipt struct {
	Fine                   circulation.Fine `json:"fine"`
	Payment                decimal.Decimal  `json:"payment"`
	MemberOutstandingFines decimal.Decimal  `json:"memberOutstandingFines"`
}

func buildReceipt(snapshot core.PayFineSnapshot, plan core.PayFinePlan) Receipt {
	fine := *snapshot.Fine
	fine.AmountPaid = plan.NewAmountPaid
	fine.Status = plan.NewFineStatus
	fine.UpdatedAt = plan.PaidAt
	fine.Version++

	return Receipt{
		Fine:                   fine,
		Payment:                plan.BalanceReduction,
		MemberOutstandingFines: plan.Fact.MemberOutstandingFines,
	}
}

// buildIdempotentReceipt reports an already-settled fine unchanged, with a
// zero payment.
func buildIdempotentReceipt(snapshot core.PayFineSnapshot) Receipt {
	return Receipt{
		Fine:                   *snapshot.Fine,
		Payment:                decimal.Zero,
		MemberOutstandingFines: snapshot.Member.OutstandingFines,
	}
}
