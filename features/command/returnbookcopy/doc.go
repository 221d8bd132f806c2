// Package returnbookcopy implements the Return Book Copy use case.
//
// This feature closes an issued loan, locating it either by loan id or by the
// (book, member) pair. It follows the Load-Decide-Apply pattern with proper
// separation between infrastructure concerns (CommandHandler) and pure
// business logic (Decide function).
//
// A late return past the policy's grace window assesses an overdue fine,
// capped at the book's replacement price plus the processing surcharge when
// the price is known. The fine row, the member's fine balance, the loan row
// and the book's available copies all change in one plan. The head of the
// book's reservation queue is read and surfaced on the receipt for an
// external notifier, but never mutated.
package returnbookcopy
