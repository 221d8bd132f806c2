package circulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation"
)

func Test_BuildJournalEntry_Success(t *testing.T) {
	// arrange
	zone := time.FixedZone("UTC+2", 2*60*60)
	occurredAt := time.Date(2025, 3, 14, 12, 0, 0, 1999, zone)

	// act
	entry, err := circulation.BuildJournalEntry(
		circulation.JournalEntryTypeLoanIssued, occurredAt, []byte(`{"loanId":"x"}`))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, circulation.JournalEntryTypeLoanIssued, entry.EntryType)
	assert.Equal(t, time.Date(2025, 3, 14, 10, 0, 0, 1000, time.UTC), entry.OccurredAt,
		"Expected UTC normalization with microsecond precision")
	assert.JSONEq(t, `{"loanId":"x"}`, string(entry.PayloadJSON))
}

func Test_BuildJournalEntry_ValidationErrors(t *testing.T) {
	validPayload := []byte(`{}`)
	validTime := time.Now()

	t.Run("empty entry type", func(t *testing.T) {
		_, err := circulation.BuildJournalEntry("", validTime, validPayload)
		assert.ErrorIs(t, err, circulation.ErrEmptyJournalEntryType)
	})

	t.Run("zero timestamp", func(t *testing.T) {
		_, err := circulation.BuildJournalEntry(circulation.JournalEntryTypeFinePaid, time.Time{}, validPayload)
		assert.ErrorIs(t, err, circulation.ErrZeroJournalOccurredAt)
	})

	t.Run("invalid payload json", func(t *testing.T) {
		_, err := circulation.BuildJournalEntry(circulation.JournalEntryTypeFinePaid, validTime, []byte(`{"broken":`))
		assert.ErrorIs(t, err, circulation.ErrInvalidPayloadJSON)
	})
}

func Test_ErrorConstructors_WrapTheirSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "not found", err: circulation.NotFoundError("member %s does not exist", "m-1"), sentinel: circulation.ErrNotFound},
		{name: "validation", err: circulation.ValidationError("either a loan id or a book and member pair is required"), sentinel: circulation.ErrValidation},
		{name: "ineligible", err: circulation.IneligibleError("borrowing limit reached: %d of %d books issued", 5, 5), sentinel: circulation.ErrIneligible},
		{name: "conflict", err: circulation.ConflictError("member already has an issued loan for this book"), sentinel: circulation.ErrConflict},
		{name: "misconfiguration", err: circulation.MisconfigurationError("no loan policy configured for class %q", "student"), sentinel: circulation.ErrMisconfiguration},
		{name: "invalid state", err: circulation.InvalidStateError("loan was already returned"), sentinel: circulation.ErrInvalidState},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)
		})
	}
}
