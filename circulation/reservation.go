package circulation

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// Reservation is a member's place in the queue for a book. The queue is
// ordered by CreatedAt, oldest first. The engine fulfills the head reservation
// when issuing to its holder and surfaces the head on return so a notifier can
// alert the next member; it never creates reservations itself.
type Reservation struct {
	ID        uuid.UUID         `db:"id"`
	MemberID  uuid.UUID         `db:"member_id"`
	BookID    uuid.UUID         `db:"book_id"`
	Status    ReservationStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
	Version   int64             `db:"version"`
}

// IsHeldBy reports whether the reservation belongs to the given member.
func (r Reservation) IsHeldBy(memberID uuid.UUID) bool {
	return r.MemberID == memberID
}
