package paymemberfine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	commandType = "PayMemberFine"
)

// Command represents the intent to record a payment against a member's fine.
type Command struct {
	FineID     uuid.UUID
	Payment    decimal.Decimal
	PaidBy     uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(fineID uuid.UUID, payment decimal.Decimal, paidBy uuid.UUID, occurredAt time.Time) Command {
	return Command{
		FineID:     fineID,
		Payment:    payment,
		PaidBy:     paidBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
