package returnbookcopy

import (
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Receipt is the success payload of a return: the closed loan, the chargeable
// overdue days, the assessed fine (zero when none), and the next reservation
// holder to notify, when the book has a queue.
type Receipt struct {
	Loan        circulation.Loan `json:"loan"`
	OverdueDays int              `json:"overdueDays"`
	FineApplied bool             `json:"fineApplied"`
	FineAmount  decimal.Decimal  `json:"fineAmount"`

	// Fine is the assessed fine row, nil when the return was on time. Payments
	// against it are taken by its ID.
	Fine *circulation.Fine `json:"fine,omitempty"`

	NextReservation *core.NextReservationSummary `json:"nextReservation,omitempty"`
}

func buildReceipt(snapshot core.ReturnSnapshot, plan core.ReturnPlan) Receipt {
	loan := *snapshot.Loan

	returnedAt := plan.ReturnedAt
	returnedBy := plan.ReturnedBy

	loan.Status = circulation.LoanStatusReturned
	loan.ReturnedAt = &returnedAt
	loan.ReturnedBy = &returnedBy
	loan.FineAmount = plan.Fact.FineAmount
	loan.UpdatedAt = returnedAt
	loan.Version++

	return Receipt{
		Loan:            loan,
		OverdueDays:     plan.OverdueDays,
		FineApplied:     plan.Fine != nil,
		FineAmount:      plan.Fact.FineAmount,
		Fine:            plan.Fine,
		NextReservation: plan.Fact.NextReservation,
	}
}
