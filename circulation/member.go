package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberStatus is the lifecycle state of a library membership.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
	MemberStatusExpired   MemberStatus = "expired"
)

// MembershipClass selects the loan policy that applies to a member.
type MembershipClass string

const (
	MembershipClassStudent MembershipClass = "student"
	MembershipClassFaculty MembershipClass = "faculty"
	MembershipClassPublic  MembershipClass = "public"
)

// Member is a registered library member. IssuedCount and OutstandingFines are
// maintained counters, updated in the same transaction as the loan and fine
// rows they summarize. Version increments on every engine-applied mutation and
// guards optimistic concurrency control.
type Member struct {
	ID               uuid.UUID       `db:"id"`
	Name             string          `db:"name"`
	Email            string          `db:"email"`
	Class            MembershipClass `db:"membership_class"`
	Status           MemberStatus    `db:"status"`
	IssuedCount      int             `db:"issued_count"`
	OutstandingFines decimal.Decimal `db:"outstanding_fines"`
	Version          int64           `db:"version"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// CanBorrow reports whether the membership status permits borrowing at all.
// Counter and fine checks are separate eligibility rules.
func (m Member) CanBorrow() bool {
	return m.Status == MemberStatusActive
}
