package shell

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

var (
	// ErrMappingToJournalEntryFailed is returned when journal fact serialization fails.
	ErrMappingToJournalEntryFailed = errors.New("mapping to journal entry failed for journal fact")

	// ErrMappingToJournalFactFailed is returned when journal payload deserialization fails.
	ErrMappingToJournalFactFailed = errors.New("mapping to journal fact failed")

	// ErrMappingToJournalFactUnknownEntryType is returned for unrecognized journal entry types.
	ErrMappingToJournalFactUnknownEntryType = errors.New("unknown journal entry type")
)

// JournalEntryFrom converts a journal fact into a validated JournalEntry ready
// for the circulation journal.
func JournalEntryFrom(fact core.JournalFact, occurredAt time.Time) (circulation.JournalEntry, error) {
	payloadJSON, err := json.Marshal(fact)
	if err != nil {
		return circulation.JournalEntry{}, errors.Join(ErrMappingToJournalEntryFailed, err)
	}

	entry, err := circulation.BuildJournalEntry(fact.FactType(), occurredAt, payloadJSON)
	if err != nil {
		return circulation.JournalEntry{}, errors.Join(ErrMappingToJournalEntryFailed, err)
	}

	return entry, nil
}

// JournalFactsFrom converts multiple JournalEntries back into typed facts.
func JournalFactsFrom(entries []circulation.JournalEntry) ([]core.JournalFact, error) {
	facts := make([]core.JournalFact, 0, len(entries))

	for _, entry := range entries {
		fact, err := JournalFactFrom(entry)
		if err != nil {
			return nil, err
		}

		facts = append(facts, fact)
	}

	return facts, nil
}

// JournalFactFrom converts a JournalEntry back into its typed fact.
func JournalFactFrom(entry circulation.JournalEntry) (core.JournalFact, error) {
	switch entry.EntryType {
	case circulation.JournalEntryTypeLoanIssued:
		return unmarshalLoanIssuedFact(entry.PayloadJSON)

	case circulation.JournalEntryTypeLoanReturned:
		return unmarshalLoanReturnedFact(entry.PayloadJSON)

	case circulation.JournalEntryTypeLoanRenewed:
		return unmarshalLoanRenewedFact(entry.PayloadJSON)

	case circulation.JournalEntryTypeFinePaid:
		return unmarshalFinePaidFact(entry.PayloadJSON)

	default:
		return nil, errors.Join(ErrMappingToJournalFactFailed, ErrMappingToJournalFactUnknownEntryType)
	}
}

func unmarshalLoanIssuedFact(payloadJSON []byte) (core.JournalFact, error) {
	fact := new(core.LoanIssuedFact)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, fact)
	if err != nil {
		return nil, errors.Join(ErrMappingToJournalFactFailed, err)
	}

	return *fact, nil
}

func unmarshalLoanReturnedFact(payloadJSON []byte) (core.JournalFact, error) {
	fact := new(core.LoanReturnedFact)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, fact)
	if err != nil {
		return nil, errors.Join(ErrMappingToJournalFactFailed, err)
	}

	return *fact, nil
}

func unmarshalLoanRenewedFact(payloadJSON []byte) (core.JournalFact, error) {
	fact := new(core.LoanRenewedFact)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, fact)
	if err != nil {
		return nil, errors.Join(ErrMappingToJournalFactFailed, err)
	}

	return *fact, nil
}

func unmarshalFinePaidFact(payloadJSON []byte) (core.JournalFact, error) {
	fact := new(core.FinePaidFact)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, fact)
	if err != nil {
		return nil, errors.Join(ErrMappingToJournalFactFailed, err)
	}

	return *fact, nil
}
