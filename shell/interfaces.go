package shell

import (
	"context"
)

// Command represents the contract for all command types in the circulation
// application. Each command encapsulates the intent and parameters needed to
// execute a specific business operation. The CommandType method enables
// polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler defines the contract for components that process commands
// with pure business logic. Handlers orchestrate the complete command
// workflow: loading a snapshot, deciding, and applying the resulting plan.
// The generic parameters C and R ensure type safety between commands and their
// receipts. Implementations should focus purely on business logic without
// observability concerns; this interface is designed to be wrapped with
// observability decorators for complete functionality.
// Handlers return the receipt for the caller plus a HandlerResult containing
// business outcomes (idempotency) and execution metadata (retry info).
type CoreCommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// Query represents the contract for all query types in the circulation
// application. Each query encapsulates the intent and parameters needed to
// produce a specific report. The QueryType method enables polymorphic handling
// and observability instrumentation.
type Query interface {
	QueryType() string
}

// CoreQueryHandler defines the contract for components that process queries
// and return projections. Handlers orchestrate the complete query workflow:
// loading rows through the storage engine and delegating to pure projection
// functions. The generic parameters Q and R ensure type safety between queries
// and their corresponding results.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
