package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

func Test_ResolveReservationForIssue_NoneWhenQueueEmpty(t *testing.T) {
	// act
	result := core.ResolveReservationForIssue(nil, uuid.New())

	// assert
	assert.Equal(t, core.ReservationResolutionNone, result)
}

func Test_ResolveReservationForIssue_FulfillableWhenMemberHoldsQueueHead(t *testing.T) {
	// arrange
	memberID := uuid.New()
	head := givenActiveReservation(t, memberID)

	// act
	result := core.ResolveReservationForIssue(&head, memberID)

	// assert
	assert.Equal(t, core.ReservationResolutionFulfillableBySelf, result)
}

func Test_ResolveReservationForIssue_BlockedWhenOtherMemberHoldsQueueHead(t *testing.T) {
	// arrange
	head := givenActiveReservation(t, uuid.New())

	// act
	result := core.ResolveReservationForIssue(&head, uuid.New())

	// assert
	assert.Equal(t, core.ReservationResolutionBlockedByOther, result)
}

func Test_ReservationBlocksRenewal(t *testing.T) {
	// arrange
	borrowerID := uuid.New()
	ownHead := givenActiveReservation(t, borrowerID)
	otherHead := givenActiveReservation(t, uuid.New())

	// act + assert
	assert.False(t, core.ReservationBlocksRenewal(nil, borrowerID), "Empty queue must not block")
	assert.False(t, core.ReservationBlocksRenewal(&ownHead, borrowerID), "Own reservation must not block")
	assert.True(t, core.ReservationBlocksRenewal(&otherHead, borrowerID), "Other member's reservation must block")
}

func Test_BuildNextReservationSummary(t *testing.T) {
	// arrange
	head := givenActiveReservation(t, uuid.New())
	holder := circulation.Member{
		ID:    head.MemberID,
		Name:  "Ada Lovelace",
		Email: "ada@example.org",
	}

	// act
	summary := core.BuildNextReservationSummary(&head, &holder)

	// assert
	assert.NotNil(t, summary)
	assert.Equal(t, head.ID, summary.ReservationID)
	assert.Equal(t, head.MemberID, summary.MemberID)
	assert.Equal(t, "Ada Lovelace", summary.MemberName)
	assert.Equal(t, "ada@example.org", summary.MemberEmail)
}

func Test_BuildNextReservationSummary_NilWithoutQueueHead(t *testing.T) {
	// act
	summary := core.BuildNextReservationSummary(nil, nil)

	// assert
	assert.Nil(t, summary)
}

func Test_BuildNextReservationSummary_KeepsIDsWhenHolderRecordMissing(t *testing.T) {
	// arrange
	head := givenActiveReservation(t, uuid.New())

	// act
	summary := core.BuildNextReservationSummary(&head, nil)

	// assert
	assert.NotNil(t, summary)
	assert.Equal(t, head.MemberID, summary.MemberID)
	assert.Empty(t, summary.MemberName)
}

func givenActiveReservation(t *testing.T, memberID uuid.UUID) circulation.Reservation {
	t.Helper()

	return circulation.Reservation{
		ID:        uuid.New(),
		MemberID:  memberID,
		BookID:    uuid.New(),
		Status:    circulation.ReservationStatusActive,
		CreatedAt: time.Now().Add(-time.Hour),
		Version:   1,
	}
}
