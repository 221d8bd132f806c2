package paymemberfine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/features/command/paymemberfine"
	"github.com/openshelf/circulation-engine-go/testutil/fakestorage"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	snapshot := givenPayFineSnapshot(t)
	storage := &fakestorage.Storage{PayFineSnapshot: snapshot}
	handler := paymemberfine.NewCommandHandler(storage)

	command := paymemberfine.BuildCommand(
		snapshot.Fine.ID, decimal.RequireFromString("4.00"), uuid.New(),
		time.Date(2025, 3, 20, 11, 0, 0, 0, time.UTC))

	// act
	receipt, result, err := handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err, "Should successfully record the payment")
	assert.False(t, result.Idempotent)

	assert.Equal(t, circulation.FineStatusPaid, receipt.Fine.Status)
	assert.True(t, receipt.Fine.AmountPaid.Equal(decimal.RequireFromString("4.00")))
	assert.Equal(t, snapshot.Fine.Version+1, receipt.Fine.Version)
	assert.True(t, receipt.Payment.Equal(decimal.RequireFromString("4.00")))
	assert.True(t, receipt.MemberOutstandingFines.IsZero())

	require.Len(t, storage.AppliedPayFinePlans, 1)
	require.Len(t, storage.AppliedEntries, 1)
	assert.Equal(t, circulation.JournalEntryTypeFinePaid, storage.AppliedEntries[0].EntryType)

	require.Len(t, storage.LoadConsistency, 1)
	assert.Equal(t, circulation.StrongConsistency, storage.LoadConsistency[0])
}

func Test_CommandHandler_Handle_Idempotent_WhenFineAlreadyPaid(t *testing.T) {
	// arrange
	snapshot := givenPayFineSnapshot(t)
	snapshot.Fine.Status = circulation.FineStatusPaid
	snapshot.Fine.AmountPaid = snapshot.Fine.Amount
	snapshot.Member.OutstandingFines = decimal.Zero

	storage := &fakestorage.Storage{PayFineSnapshot: snapshot}
	handler := paymemberfine.NewCommandHandler(storage)

	command := paymemberfine.BuildCommand(
		snapshot.Fine.ID, decimal.RequireFromString("4.00"), uuid.New(), time.Now())

	// act
	receipt, result, err := handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err, "Should succeed (idempotent) when the fine is already settled")
	assert.True(t, result.Idempotent)
	assert.True(t, receipt.Payment.IsZero(), "An idempotent payment takes nothing")
	assert.Equal(t, circulation.FineStatusPaid, receipt.Fine.Status)
	assert.Empty(t, storage.AppliedPayFinePlans, "No plan may be applied for a no-op")
	assert.Empty(t, storage.AppliedEntries)
}

func Test_CommandHandler_Handle_Error_Overpayment(t *testing.T) {
	// arrange
	snapshot := givenPayFineSnapshot(t)
	storage := &fakestorage.Storage{PayFineSnapshot: snapshot}
	handler := paymemberfine.NewCommandHandler(storage)

	command := paymemberfine.BuildCommand(
		snapshot.Fine.ID, decimal.RequireFromString("9.99"), uuid.New(), time.Now())

	// act
	_, _, err := handler.Handle(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, circulation.ErrIneligible)
	assert.Empty(t, storage.AppliedPayFinePlans)
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	snapshot := givenPayFineSnapshot(t)
	storage := &fakestorage.Storage{
		PayFineSnapshot:        snapshot,
		ConflictsBeforeSuccess: 1,
	}
	handler := paymemberfine.NewCommandHandler(storage)

	command := paymemberfine.BuildCommand(
		snapshot.Fine.ID, decimal.RequireFromString("1.00"), uuid.New(), time.Now())

	// act
	_, result, err := handler.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err, "Should succeed after the conflict clears")
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Len(t, storage.AppliedPayFinePlans, 1)
}
