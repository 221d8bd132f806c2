package memberloans

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	queryType = "MemberLoans"
)

// Query represents the intent to query the loans of one member.
type Query struct {
	MemberID uuid.UUID
	OnlyOpen bool
	AsOf     core.OccurredAtTS
}

// BuildQuery creates a new Query covering the member's full loan history.
func BuildQuery(memberID uuid.UUID, asOf time.Time) Query {
	return Query{
		MemberID: memberID,
		AsOf:     core.ToOccurredAt(asOf),
	}
}

// BuildOpenLoansQuery creates a new Query restricted to the member's loans
// still out.
func BuildOpenLoansQuery(memberID uuid.UUID, asOf time.Time) Query {
	return Query{
		MemberID: memberID,
		OnlyOpen: true,
		AsOf:     core.ToOccurredAt(asOf),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
