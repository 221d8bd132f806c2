package issuebookcopy

import (
	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Receipt is the success payload of an issue: the created loan joined with
// member and book summaries for the caller's confirmation screen.
type Receipt struct {
	Loan   circulation.Loan `json:"loan"`
	Member MemberSummary    `json:"member"`
	Book   BookSummary      `json:"book"`

	// FulfilledReservationID is set when the issue fulfilled the member's own
	// head reservation.
	FulfilledReservationID *uuid.UUID `json:"fulfilledReservationId,omitempty"`
}

// MemberSummary identifies the borrower on the receipt.
type MemberSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BookSummary identifies the issued title on the receipt.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}

func buildReceipt(snapshot core.IssueSnapshot, plan core.IssuePlan) Receipt {
	receipt := Receipt{
		Loan: plan.Loan,
		Member: MemberSummary{
			ID:    snapshot.Member.ID,
			Name:  snapshot.Member.Name,
			Email: snapshot.Member.Email,
		},
		Book: BookSummary{
			ID:     snapshot.Book.ID,
			Title:  snapshot.Book.Title,
			Author: snapshot.Book.Author,
		},
	}

	if plan.FulfillReservationID != uuid.Nil {
		reservationID := plan.FulfillReservationID
		receipt.FulfilledReservationID = &reservationID
	}

	return receipt
}
