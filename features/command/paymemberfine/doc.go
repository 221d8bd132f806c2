// Package paymemberfine implements the Pay Member Fine use case.
//
// This feature records a payment against a pending fine and reduces the
// member's outstanding fine balance by the same amount in one plan. Partial
// payments are allowed and accumulate; the fine flips to paid when fully
// covered. Paying an already-paid fine is an idempotent no-op, while waived
// fines reject payments as an invalid state.
package paymemberfine
