package circulation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation"
)

func Test_BuildLoanFilter_MatchingAnyLoan(t *testing.T) {
	// act
	filter := circulation.BuildLoanFilter().MatchingAnyLoan()

	// assert
	assert.Empty(t, filter.Statuses())
	assert.False(t, filter.HasMemberID())
	assert.False(t, filter.HasBookID())
	assert.False(t, filter.HasDueBound())
}

func Test_BuildLoanFilter_CombinesCriteria(t *testing.T) {
	// arrange
	memberID := uuid.New()
	bookID := uuid.New()
	deadline := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	// act
	filter := circulation.BuildLoanFilter().
		Matching().
		AnyStatusOf(circulation.LoanStatusIssued).
		OwnedByMember(memberID).
		ForBook(bookID).
		DueBefore(deadline).
		Finalize()

	// assert
	assert.Equal(t, []circulation.LoanStatus{circulation.LoanStatusIssued}, filter.Statuses())
	assert.Equal(t, memberID, filter.MemberID())
	assert.Equal(t, bookID, filter.BookID())
	assert.Equal(t, deadline, filter.DueBefore())
	assert.True(t, filter.HasMemberID())
	assert.True(t, filter.HasBookID())
	assert.True(t, filter.HasDueBound())
}

func Test_BuildLoanFilter_SanitizesStatuses(t *testing.T) {
	// act
	filter := circulation.BuildLoanFilter().
		Matching().
		AnyStatusOf(circulation.LoanStatusReturned, "", circulation.LoanStatusIssued, circulation.LoanStatusReturned).
		Finalize()

	// assert
	assert.Equal(t,
		[]circulation.LoanStatus{circulation.LoanStatusIssued, circulation.LoanStatusReturned},
		filter.Statuses(),
		"Expected empty statuses removed, rest sorted and deduplicated")
}

func Test_BuildLoanFilter_AnyStatusOfAccumulatesAcrossCalls(t *testing.T) {
	// act
	filter := circulation.BuildLoanFilter().
		Matching().
		AnyStatusOf(circulation.LoanStatusReturned).
		AnyStatusOf(circulation.LoanStatusIssued).
		Finalize()

	// assert
	assert.Equal(t,
		[]circulation.LoanStatus{circulation.LoanStatusIssued, circulation.LoanStatusReturned},
		filter.Statuses())
}
