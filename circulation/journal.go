package circulation

import (
	"encoding/json"
	"errors"
	"time"
)

// Journal entry types written by the circulation engine, one per applied
// command.
const (
	JournalEntryTypeLoanIssued   = "LoanIssued"
	JournalEntryTypeLoanReturned = "LoanReturned"
	JournalEntryTypeLoanRenewed  = "LoanRenewed"
	JournalEntryTypeFinePaid     = "FinePaid"
)

var (
	ErrEmptyJournalEntryType = errors.New("journal entry type must not be empty")
	ErrZeroJournalOccurredAt = errors.New("journal occurredAt timestamp must not be zero")
	ErrInvalidPayloadJSON    = errors.New("journal payload is no valid JSON")
)

// JournalEntry is one immutable record in the circulation journal, written in
// the same transaction as the mutations it describes. The payload is an
// opaque, validated JSON document; the engine never interprets it.
type JournalEntry struct {
	EntryType   string
	OccurredAt  time.Time
	PayloadJSON []byte
}

// BuildJournalEntry creates a validated JournalEntry.
// The timestamp is normalized to UTC with microsecond precision to match the
// storage resolution of Postgres.
func BuildJournalEntry(entryType string, occurredAt time.Time, payloadJSON []byte) (JournalEntry, error) {
	if entryType == "" {
		return JournalEntry{}, ErrEmptyJournalEntryType
	}

	if occurredAt.IsZero() {
		return JournalEntry{}, ErrZeroJournalOccurredAt
	}

	if !json.Valid(payloadJSON) {
		return JournalEntry{}, ErrInvalidPayloadJSON
	}

	return JournalEntry{
		EntryType:   entryType,
		OccurredAt:  occurredAt.UTC().Truncate(time.Microsecond),
		PayloadJSON: payloadJSON,
	}, nil
}
