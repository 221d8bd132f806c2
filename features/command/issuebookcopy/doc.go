// Package issuebookcopy implements the Issue Book Copy use case.
//
// This feature issues an available book copy to an eligible member. It follows
// the Load-Decide-Apply pattern with proper separation between infrastructure
// concerns (CommandHandler) and pure business logic (Decide function).
//
// The business logic runs the ordered eligibility checks (account status,
// loan limit, fine ceiling, catalog state, duplicate loans) and resolves the
// reservation queue: the queue head blocks the issue unless the requesting
// member holds it, in which case the issue fulfills the reservation in the
// same transaction. The due date is the issue day plus the policy's loan
// duration, normalized to the start of that day.
package issuebookcopy
