package returnbookcopy

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	commandType = "ReturnBookCopy"
)

// Command represents the intent to return an issued book copy. The loan is
// located by LoanID when set, otherwise by the (BookID, MemberID) pair; a
// command carrying neither fails validation in Decide.
type Command struct {
	LoanID     uuid.UUID
	BookID     uuid.UUID
	MemberID   uuid.UUID
	ReturnedBy uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommandForLoan creates a Command that locates the loan by its id.
func BuildCommandForLoan(loanID uuid.UUID, returnedBy uuid.UUID, occurredAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		ReturnedBy: returnedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// BuildCommandForBookAndMember creates a Command that locates the open loan
// by the (book, member) pair.
func BuildCommandForBookAndMember(
	bookID uuid.UUID,
	memberID uuid.UUID,
	returnedBy uuid.UUID,
	occurredAt time.Time,
) Command {

	return Command{
		BookID:     bookID,
		MemberID:   memberID,
		ReturnedBy: returnedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
