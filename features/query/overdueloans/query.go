package overdueloans

import (
	"time"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

const (
	queryType = "OverdueLoans"
)

// Query represents the intent to scan for loans overdue at a point in time.
type Query struct {
	AsOf core.OccurredAtTS
}

// BuildQuery creates a new Query that evaluates overdue state as of the
// provided time, usually time.Now().
func BuildQuery(asOf time.Time) Query {
	return Query{
		AsOf: core.ToOccurredAt(asOf),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
