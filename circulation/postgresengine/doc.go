// Package postgresengine provides the PostgreSQL storage engine for the
// circulation domain.
//
// The engine has two halves. The read half loads decision snapshots and loan
// detail projections with plain SELECT statements that also record the version
// of every row a decision may later guard. The write half applies a decision
// plan inside a single transaction: it re-locks each guarded row with
// SELECT ... FOR UPDATE in a fixed order, verifies that the recorded versions
// still match, executes the plan's mutations (each of which bumps the row
// version), appends a journal entry, and commits. A version mismatch, a
// vanished row, or a serialization failure surfaces as
// circulation.ErrConcurrencyConflict so command handlers can retry with a
// fresh snapshot.
//
// Three database access paths are supported through internal adapters:
// pgx (pgxpool.Pool, optionally with a read replica), database/sql, and sqlx.
package postgresengine
