package core

import (
	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// ReservationResolution is the outcome of checking the reservation queue head
// before issuing a book.
type ReservationResolution int

const (
	// ReservationResolutionNone means no active reservation exists, the issue
	// proceeds unaffected.
	ReservationResolutionNone ReservationResolution = iota

	// ReservationResolutionFulfillableBySelf means the queue head belongs to
	// the issuing member, the issue proceeds and fulfills that reservation.
	ReservationResolutionFulfillableBySelf

	// ReservationResolutionBlockedByOther means another member holds the queue
	// head, the issue is blocked.
	ReservationResolutionBlockedByOther
)

// String returns the string representation of the resolution.
func (r ReservationResolution) String() string {
	switch r {
	case ReservationResolutionNone:
		return "none"
	case ReservationResolutionFulfillableBySelf:
		return "fulfillable_by_self"
	case ReservationResolutionBlockedByOther:
		return "blocked_by_other"
	default:
		return "unknown"
	}
}

// ResolveReservationForIssue inspects the oldest active reservation for a book
// (nil when the queue is empty) and resolves how it affects an issue to the
// given member. Only the queue head matters: a member further back in the
// queue cannot jump it by borrowing directly.
func ResolveReservationForIssue(queueHead *circulation.Reservation, memberID uuid.UUID) ReservationResolution {
	if queueHead == nil {
		return ReservationResolutionNone
	}

	if queueHead.IsHeldBy(memberID) {
		return ReservationResolutionFulfillableBySelf
	}

	return ReservationResolutionBlockedByOther
}

// ReservationBlocksRenewal reports whether the queue head blocks a renewal.
// Only reservations held by OTHER members block: a member's own reservation on
// a book they already hold never prevents them from renewing it.
func ReservationBlocksRenewal(queueHead *circulation.Reservation, borrowerID uuid.UUID) bool {
	return queueHead != nil && !queueHead.IsHeldBy(borrowerID)
}

// NextReservationSummary identifies the member to notify when a reserved book
// comes back. It is surfaced on return receipts and journal payloads for an
// external notifier; the engine itself sends nothing.
type NextReservationSummary struct {
	ReservationID uuid.UUID `json:"reservationId"`
	MemberID      uuid.UUID `json:"memberId"`
	MemberName    string    `json:"memberName"`
	MemberEmail   string    `json:"memberEmail"`
}

// BuildNextReservationSummary combines the queue head with its holder's member
// record. It returns nil when there is no queue head. A missing holder record
// still yields a summary with the IDs, so the notification is not lost.
func BuildNextReservationSummary(
	queueHead *circulation.Reservation,
	holder *circulation.Member,
) *NextReservationSummary {

	if queueHead == nil {
		return nil
	}

	summary := &NextReservationSummary{
		ReservationID: queueHead.ID,
		MemberID:      queueHead.MemberID,
	}

	if holder != nil {
		summary.MemberName = holder.Name
		summary.MemberEmail = holder.Email
	}

	return summary
}
