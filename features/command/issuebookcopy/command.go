package issuebookcopy

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	commandType = "IssueBookCopy"
)

// Command represents the intent to issue a book copy to a member.
// It encapsulates all the necessary information required to execute the issue book copy use case.
type Command struct {
	MemberID   uuid.UUID
	BookID     uuid.UUID
	IssuedBy   uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(memberID uuid.UUID, bookID uuid.UUID, issuedBy uuid.UUID, occurredAt time.Time) Command {
	return Command{
		MemberID:   memberID,
		BookID:     bookID,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
