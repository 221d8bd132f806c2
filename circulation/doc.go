// Package circulation defines the shared domain model for the library
// circulation engine: members, books, loans, fines, reservations, loan
// policies, and the journal entries that record every applied mutation.
//
// The package holds plain data types, tagged error sentinels, monetary
// constants, and the LoanFilter builder used to describe row selections to a
// storage engine. It carries no storage or transport dependencies so that the
// pure decision core and the Postgres engine can both build on it.
//
// Key components:
//   - Member, Book, Loan, Fine, Reservation, LoanPolicy: the circulation records
//   - Error sentinels (ErrNotFound, ErrIneligible, ...) with message constructors
//   - LoanFilter: fluent builder for loan row selection
//   - JournalEntry: validated payload for the circulation journal
//   - Consistency level context API for routing reads to replicas
//   - Observability interfaces (Logger, MetricsCollector, TracingCollector)
package circulation
