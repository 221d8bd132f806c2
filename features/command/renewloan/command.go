package renewloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	commandType = "RenewLoan"
)

// Command represents the intent to renew an issued loan.
type Command struct {
	LoanID     uuid.UUID
	RenewedBy  uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, renewedBy uuid.UUID, occurredAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		RenewedBy:  renewedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
