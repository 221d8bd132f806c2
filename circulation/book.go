package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is a catalog title with a physical copy pool. AvailableCopies is a
// maintained counter decremented on issue and incremented on return.
// ReplacementPrice is nil when the price is unknown; overdue fines for such
// books are not capped. Deleted marks soft removal from the catalog, which
// blocks new issues but leaves historical loans intact.
type Book struct {
	ID               uuid.UUID        `db:"id"`
	Title            string           `db:"title"`
	Author           string           `db:"author"`
	ISBN             string           `db:"isbn"`
	TotalCopies      int              `db:"total_copies"`
	AvailableCopies  int              `db:"available_copies"`
	ReplacementPrice *decimal.Decimal `db:"replacement_price"`
	Deleted          bool             `db:"is_deleted"`
	Version          int64            `db:"version"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

// HasAvailableCopy reports whether at least one copy can be issued.
func (b Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}
