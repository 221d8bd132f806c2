package issuebookcopy_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/features/command/issuebookcopy"
	"github.com/openshelf/circulation-engine-go/testutil/fakestorage"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	snapshot := givenIssueSnapshot(t)
	storage := &fakestorage.Storage{IssueSnapshot: snapshot}
	handler := issuebookcopy.NewCommandHandler(storage)

	command := issuebookcopy.BuildCommand(
		snapshot.MemberID, snapshot.BookID, uuid.New(), time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	// act
	receipt, result, err := handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err, "Should successfully issue the book copy")
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.RetryAttempts)

	require.Len(t, storage.AppliedIssuePlans, 1, "Should apply exactly one plan")
	appliedPlan := storage.AppliedIssuePlans[0]
	assert.Equal(t, receipt.Loan, appliedPlan.Loan, "Receipt should carry the applied loan")

	require.Len(t, storage.AppliedEntries, 1, "Should journal the issue")
	assert.Equal(t, circulation.JournalEntryTypeLoanIssued, storage.AppliedEntries[0].EntryType)

	assert.Equal(t, snapshot.Member.Name, receipt.Member.Name)
	assert.Equal(t, snapshot.Book.Title, receipt.Book.Title)
	assert.Nil(t, receipt.FulfilledReservationID)

	require.Len(t, storage.LoadConsistency, 1)
	assert.Equal(t, circulation.StrongConsistency, storage.LoadConsistency[0],
		"Snapshot loads must pin the primary")
}

func Test_CommandHandler_Handle_BusinessErrorLeavesStorageUntouched(t *testing.T) {
	// arrange
	snapshot := givenIssueSnapshot(t)
	snapshot.Member.Status = circulation.MemberStatusSuspended

	storage := &fakestorage.Storage{IssueSnapshot: snapshot}
	handler := issuebookcopy.NewCommandHandler(storage)

	command := issuebookcopy.BuildCommand(snapshot.MemberID, snapshot.BookID, uuid.New(), time.Now())

	// act
	_, result, err := handler.Handle(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, circulation.ErrIneligible)
	assert.Equal(t, 1, result.RetryAttempts, "Business errors must not be retried")
	assert.Empty(t, storage.AppliedIssuePlans, "Failed decisions must not reach storage")
	assert.Empty(t, storage.AppliedEntries)
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	snapshot := givenIssueSnapshot(t)
	storage := &fakestorage.Storage{
		IssueSnapshot:          snapshot,
		ConflictsBeforeSuccess: 1,
	}
	handler := issuebookcopy.NewCommandHandler(storage)

	command := issuebookcopy.BuildCommand(snapshot.MemberID, snapshot.BookID, uuid.New(), time.Now())

	// act
	_, result, err := handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err, "Should succeed after the conflict clears")
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Len(t, storage.AppliedIssuePlans, 1, "Only the retried attempt should commit")
	assert.Equal(t, 2, storage.LoadCalls, "Each attempt must re-read a fresh snapshot")
}

func Test_CommandHandler_Handle_LoadFailurePropagates(t *testing.T) {
	// arrange
	loadFailure := assert.AnError
	storage := &fakestorage.Storage{LoadErr: loadFailure}
	handler := issuebookcopy.NewCommandHandler(storage)

	command := issuebookcopy.BuildCommand(uuid.New(), uuid.New(), uuid.New(), time.Now())

	// act
	_, _, err := handler.Handle(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, loadFailure)
	assert.Empty(t, storage.AppliedIssuePlans)
}
