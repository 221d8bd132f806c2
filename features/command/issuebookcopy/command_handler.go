package issuebookcopy

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/shell"
)

// CirculationStorage defines the interface needed by the CommandHandler for storage operations.
type CirculationStorage interface {
	LoadIssueSnapshot(ctx context.Context, memberID uuid.UUID, bookID uuid.UUID) (core.IssueSnapshot, error)
	ApplyIssue(ctx context.Context, plan core.IssuePlan, entry circulation.JournalEntry) error
}

// CommandHandler orchestrates the complete command processing workflow with pure business logic and retry.
// It handles the core circulation workflow: Load -> Decide -> Apply.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	storage      CirculationStorage
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(storage CirculationStorage, opts ...Option) CommandHandler {
	handler := CommandHandler{
		storage: storage,
		// retryOptions defaults to nil (will use retry defaults)
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete command processing workflow with retry logic.
// It delegates business logic to executeCommand and handles retry with exponential backoff.
// Returns the issue receipt plus a HandlerResult containing execution metadata for observability.
//
// Resilience: Implements exponential backoff retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Receipt, shell.HandlerResult, error) {
	var receipt Receipt

	// Execute command with retry logic (no observability - that's in the wrapper)
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		executedReceipt, execErr := h.executeCommand(retryCtx, command)
		receipt = executedReceipt

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Receipt{}, shell.NewErrorResult(retryMetrics), err
	}

	return receipt, shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Receipt, error) {
	// Snapshots feeding version guards must see the latest committed state
	ctx = circulation.WithStrongConsistency(ctx)

	// Load phase
	snapshot, err := h.storage.LoadIssueSnapshot(ctx, command.MemberID, command.BookID)
	if err != nil {
		return Receipt{}, err
	}

	// Business logic phase - delegate to pure core function
	result := Decide(snapshot, command)
	if result.HasError() {
		return Receipt{}, result.Err
	}

	// Apply phase - plan plus journal entry in one transaction
	entry, entryErr := shell.JournalEntryFrom(result.Plan.Fact, command.OccurredAt)
	if entryErr != nil {
		return Receipt{}, entryErr
	}

	if applyErr := h.storage.ApplyIssue(ctx, result.Plan, entry); applyErr != nil {
		return Receipt{}, applyErr
	}

	return buildReceipt(snapshot, result.Plan), nil
}
