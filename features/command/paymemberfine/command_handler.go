package paymemberfine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/shell"
)

// CirculationStorage defines the interface needed by the CommandHandler for storage operations.
type CirculationStorage interface {
	LoadPayFineSnapshot(ctx context.Context, fineID uuid.UUID) (core.PayFineSnapshot, error)
	ApplyFinePayment(ctx context.Context, plan core.PayFinePlan, entry circulation.JournalEntry) error
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
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete command processing workflow with retry logic.
// It delegates business logic to executeCommand and handles retry with exponential backoff.
// Returns the payment receipt plus a HandlerResult containing business outcomes
// (idempotency) and execution metadata for observability.
//
// Resilience: Implements exponential backoff retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Receipt, shell.HandlerResult, error) {
	var receipt Receipt
	var isIdempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		executedReceipt, idempotent, execErr := h.executeCommand(retryCtx, command)
		receipt = executedReceipt
		isIdempotent = idempotent

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Receipt{}, shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return receipt, shell.NewIdempotentResult(retryMetrics), nil
	}

	return receipt, shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
// The boolean result reports an idempotent outcome (fine already settled).
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Receipt, bool, error) {
	// Snapshots feeding version guards must see the latest committed state
	ctx = circulation.WithStrongConsistency(ctx)

	// Load phase
	snapshot, err := h.storage.LoadPayFineSnapshot(ctx, command.FineID)
	if err != nil {
		return Receipt{}, false, err
	}

	// Business logic phase - delegate to pure core function
	result := Decide(snapshot, command)
	if result.HasError() {
		return Receipt{}, false, result.Err
	}

	if result.IsIdempotent() {
		return buildIdempotentReceipt(snapshot), true, nil
	}

	// Apply phase - plan plus journal entry in one transaction
	entry, entryErr := shell.JournalEntryFrom(result.Plan.Fact, command.OccurredAt)
	if entryErr != nil {
		return Receipt{}, false, entryErr
	}

	if applyErr := h.storage.ApplyFinePayment(ctx, result.Plan, entry); applyErr != nil {
		return Receipt{}, false, applyErr
	}

	return buildReceipt(snapshot, result.Plan), false, nil
}
