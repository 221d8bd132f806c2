// Package config provides PostgreSQL connection configuration for the
// circulation engine binaries.
//
// This package contains factory functions for creating database connections
// using the engine's supported PostgreSQL adapters (pgx.Pool, sql.DB, sqlx.DB)
// with pool settings tuned for the circulation workload.
//
// The configurations support both single-node and primary/replica setups.
// With a replica configured, queries that opt into eventual consistency are
// routed to the replica while command transactions stay on the primary.
//
// DSNs default to a local development database and can be overridden through
// CIRCULATION_POSTGRES_DSN, CIRCULATION_POSTGRES_PRIMARY_DSN and
// CIRCULATION_POSTGRES_REPLICA_DSN.
package config
