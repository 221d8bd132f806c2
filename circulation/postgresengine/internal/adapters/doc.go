// Package adapters provides database adapter implementations for the
// PostgreSQL circulation store.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgx.Pool, sql.DB, and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, allowing the
// circulation store to work seamlessly with any supported connection type.
//
// Beyond plain queries, the adapters expose transactions (DBTx) because the
// store applies every command plan atomically: row locks, version checks,
// mutations, and the journal append happen inside one transaction.
//
// Read routing: when an adapter is configured with a replica pool, Query
// consults the consistency level carried in the context. Strong reads (the
// default, required for command snapshots) stay on the primary; eventual
// reads may be served by the replica. Transactions always run on the primary.
package adapters
