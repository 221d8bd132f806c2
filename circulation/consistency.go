package circulation

import "context"

// ConsistencyLevel controls which database node serves a read operation when
// the engine is configured with a replica.
type ConsistencyLevel int

const (
	// StrongConsistency routes reads to the primary node. Command snapshots
	// require it so that optimistic version guards see the latest state.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica node that may lag the
	// primary. Reporting queries such as the overdue scan tolerate the lag.
	EventualConsistency
)

// String returns the string representation of the consistency level.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}

type contextKey string

const consistencyLevelKey contextKey = "circulation.consistency_level"

// WithStrongConsistency returns a context that routes reads to the primary.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows replica reads.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context,
// defaulting to StrongConsistency when none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(consistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}
