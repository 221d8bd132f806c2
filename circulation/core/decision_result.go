package core

// Decision outcomes produced by the pure Decide functions.
const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	errorOutcome      = "error"
)

// DecisionResult carries the outcome of a pure command decision, generic over
// the plan type the command produces. A success decision carries a plan for
// the storage engine to apply. An error decision carries the business error
// and no plan: failed commands leave no trace in storage. An idempotent
// decision carries neither, the requested state already holds.
type DecisionResult[P any] struct {
	Outcome string
	Plan    P
	Err     error
}

// IdempotentDecision creates a result for a command whose effect already holds.
func IdempotentDecision[P any]() DecisionResult[P] {
	return DecisionResult[P]{Outcome: idempotentOutcome}
}

// SuccessDecision creates a result carrying a plan to apply.
func SuccessDecision[P any](plan P) DecisionResult[P] {
	return DecisionResult[P]{Outcome: successOutcome, Plan: plan}
}

// ErrorDecision creates a result carrying a business error.
func ErrorDecision[P any](err error) DecisionResult[P] {
	return DecisionResult[P]{Outcome: errorOutcome, Err: err}
}

// HasPlanToApply reports whether the storage engine must apply a plan.
func (r DecisionResult[P]) HasPlanToApply() bool {
	return r.Outcome == successOutcome
}

// IsIdempotent reports whether the command was a no-op.
func (r DecisionResult[P]) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// HasError reports whether the decision failed with a business error.
func (r DecisionResult[P]) HasError() bool {
	return r.Err != nil
}
