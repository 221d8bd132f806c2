package renewloan

import (
	"time"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Receipt is the success payload of a renewal: the extended loan, both due
// dates, and how many renewals the policy still allows.
type Receipt struct {
	Loan              circulation.Loan `json:"loan"`
	PreviousDueDate   time.Time        `json:"previousDueDate"`
	NewDueDate        time.Time        `json:"newDueDate"`
	RenewalsRemaining int              `json:"renewalsRemaining"`
}

func buildReceipt(snapshot core.RenewSnapshot, plan core.RenewPlan) Receipt {
	loan := *snapshot.Loan
	loan.DueDate = plan.NewDueDate
	loan.RenewalCount = plan.NewRenewalCount
	loan.UpdatedAt = plan.RenewedAt
	loan.Version++

	return Receipt{
		Loan:              loan,
		PreviousDueDate:   plan.Fact.PreviousDueDate,
		NewDueDate:        plan.NewDueDate,
		RenewalsRemaining: snapshot.Policy.RenewalLimit - plan.NewRenewalCount,
	}
}
