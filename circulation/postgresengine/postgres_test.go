package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/testutil/helper"
)

func Test_NewCirculationStore_RejectsNilConnections(t *testing.T) {
	// act
	_, pgxErr := NewCirculationStoreFromPGXPool(nil)
	_, replicaErr := NewCirculationStoreFromPGXPoolAndReplica(nil, nil)
	_, sqlErr := NewCirculationStoreFromSQLDB(nil)
	_, sqlxErr := NewCirculationStoreFromSQLX(nil)

	// assert
	assert.ErrorIs(t, pgxErr, circulation.ErrNilDatabaseConnection)
	assert.ErrorIs(t, replicaErr, circulation.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, circulation.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, circulation.ErrNilDatabaseConnection)
}

func Test_WithTablePrefix_AppliesToEveryTable(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	err := WithTablePrefix("lib_")(&cs)
	require.NoError(t, err)

	// act
	memberSQL, memberErr := cs.buildMemberSelectSQL(uuid.New())
	journalSQL, journalErr := cs.buildJournalTailSQL(10)

	// assert
	require.NoError(t, memberErr)
	require.NoError(t, journalErr)
	assert.Contains(t, memberSQL, `FROM "lib_members"`)
	assert.Contains(t, journalSQL, `FROM "lib_circulation_journal"`)
	assert.Equal(t, "lib_loans", cs.loansTable())
	assert.Equal(t, "lib_schema_migrations", cs.migrationsTable())
}

func Test_WithTablePrefix_RejectsInvalidPrefixes(t *testing.T) {
	testCases := []struct {
		name   string
		prefix string
	}{
		{name: "starts with digit", prefix: "9lib_"},
		{name: "uppercase letter", prefix: "Lib_"},
		{name: "hyphen", prefix: "lib-"},
		{name: "embedded space", prefix: "lib "},
		{name: "quote injection", prefix: `lib";--`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := WithTablePrefix(tc.prefix)(&CirculationStore{})

			// assert
			assert.ErrorIs(t, err, circulation.ErrInvalidTablePrefix)
		})
	}
}

func Test_WithTablePrefix_AcceptsEmptyAndIdentifierPrefixes(t *testing.T) {
	for _, prefix := range []string{"", "lib_", "branch2_", "a"} {
		// act
		err := WithTablePrefix(prefix)(&CirculationStore{})

		// assert
		assert.NoError(t, err, "prefix %q should be accepted", prefix)
	}
}

func Test_WithContextualLogger_FansOutToBothLoggers(t *testing.T) {
	// arrange
	plainLogger := helper.NewLoggerSpy(true)
	contextualLogger := helper.NewContextualLoggerSpy(true)

	cs := CirculationStore{}
	require.NoError(t, WithLogger(plainLogger)(&cs))
	require.NoError(t, WithContextualLogger(contextualLogger)(&cs))

	ctx := context.Background()

	// act
	cs.logQueryWithDuration(ctx, "SELECT 1", logActionLoad, time.Millisecond)
	cs.logOperation(ctx, logActionLoanIssued, logAttrLoanID, uuid.New().String())
	cs.logWarn(ctx, logMsgIssuedCountClamped)
	cs.logError(ctx, logMsgBuildQueryFailed, errors.New("missing column"))

	// assert
	assert.True(t, plainLogger.HasLog("debug", logMsgSQLExecuted+logActionLoad))
	assert.True(t, plainLogger.HasLog("info", logMsgOperation+logActionLoanIssued))
	assert.True(t, plainLogger.HasLog("warn", logMsgIssuedCountClamped))
	assert.True(t, plainLogger.HasLog("error", logMsgBuildQueryFailed))

	assert.True(t, contextualLogger.HasDebugLog(logMsgSQLExecuted+logActionLoad))
	assert.True(t, contextualLogger.HasInfoLog(logMsgOperation+logActionLoanIssued))
	assert.True(t, contextualLogger.HasWarnLog(logMsgIssuedCountClamped))
	assert.True(t, contextualLogger.HasErrorLog(logMsgBuildQueryFailed))
	assert.Equal(t, 4, contextualLogger.GetTotalRecordCount())
}

func Test_ContextualLoggerAlone_ReceivesErrorLogs(t *testing.T) {
	// arrange
	contextualLogger := helper.NewContextualLoggerSpy(true)
	cs := CirculationStore{contextualLogger: contextualLogger}

	// act
	cs.logError(context.Background(), logMsgCommitTxFailed, errors.New("broken pipe"))

	// assert
	require.Len(t, contextualLogger.GetErrorRecords(), 1)
	record := contextualLogger.GetErrorRecords()[0]
	assert.Equal(t, logMsgCommitTxFailed, record.Message)
	assert.Equal(t, []any{logAttrError, "broken pipe"}, record.Args)
}

func Test_OrderGuardsForLocking_SortsByTableRankThenID(t *testing.T) {
	// arrange
	memberID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	bookID := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	loanLow := uuid.MustParse("00000000-0000-0000-0000-000000000003")
	loanHigh := uuid.MustParse("ffffffff-0000-0000-0000-000000000004")

	guards := []core.RowGuard{
		core.GuardRow(core.GuardTableLoans, loanHigh, 7),
		core.GuardRow(core.GuardTableBooks, bookID, 3),
		core.GuardRow(core.GuardTableLoans, loanLow, 2),
		core.GuardRow(core.GuardTableMembers, memberID, 5),
	}

	// act
	ordered := orderGuardsForLocking(guards)

	// assert
	require.Len(t, ordered, 4)
	assert.Equal(t, core.GuardTableMembers, ordered[0].Table)
	assert.Equal(t, core.GuardTableBooks, ordered[1].Table)
	assert.Equal(t, loanLow, ordered[2].ID)
	assert.Equal(t, loanHigh, ordered[3].ID)

	// the input slice stays untouched
	assert.Equal(t, core.GuardTableLoans, guards[0].Table)
}

func Test_BuildGuardLockSQL_LocksTheRowForUpdate(t *testing.T) {
	// arrange
	cs := CirculationStore{}
	rowID := uuid.New()
	guard := core.GuardRow(core.GuardTableBooks, rowID, 4)

	// act
	sqlQuery, err := cs.buildGuardLockSQL(guard)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `SELECT "version" FROM "books"`)
	assert.Contains(t, sqlQuery, rowID.String())
	assert.Contains(t, sqlQuery, "FOR UPDATE")
}

func Test_IsConcurrencySQLState_MatchesOnlyRetryableCodes(t *testing.T) {
	assert.True(t, isConcurrencySQLState("40001"))
	assert.True(t, isConcurrencySQLState("40P01"))
	assert.True(t, isConcurrencySQLState("23505"))
	assert.False(t, isConcurrencySQLState("23503"))
	assert.False(t, isConcurrencySQLState("42601"))
	assert.False(t, isConcurrencySQLState(""))
}

func Test_IsConcurrencySQLError_UnwrapsDriverErrors(t *testing.T) {
	// arrange
	serialization := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40001"})
	uniqueViolation := errors.Join(errors.New("wrapped"), &pq.Error{Code: "23505"})
	foreignKey := &pgconn.PgError{Code: "23503"}
	plain := errors.New("connection reset")

	// act + assert
	assert.True(t, isConcurrencySQLError(serialization))
	assert.True(t, isConcurrencySQLError(uniqueViolation))
	assert.False(t, isConcurrencySQLError(foreignKey))
	assert.False(t, isConcurrencySQLError(plain))
}
