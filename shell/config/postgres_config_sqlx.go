package config

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLXConfig creates a configured *sqlx.DB for the given DSN with the
// engine's default pool settings. The connection is verified with a ping.
func PostgresSQLXConfig(dsn string) (*sqlx.DB, error) {
	const defaultMaxOpenConnections = 50
	const defaultMaxIdleConnections = 2
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool settings
	db.SetMaxOpenConns(defaultMaxOpenConnections)
	db.SetMaxIdleConns(defaultMaxIdleConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	// Test the connection
	if pingErr := db.PingContext(context.Background()); pingErr != nil {
		return nil, pingErr
	}

	return db, nil
}

// PostgresSQLXSingleConfig creates a configured *sqlx.DB for a single database.
func PostgresSQLXSingleConfig() *sqlx.DB {
	db, err := PostgresSQLXConfig(PostgresSingleDSN())
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	return db
}

// PostgresSQLXPrimaryConfig creates a configured *sqlx.DB for the primary node of a replicated database.
func PostgresSQLXPrimaryConfig() *sqlx.DB {
	db, err := PostgresSQLXConfig(PostgresPrimaryDSN())
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	return db
}

// PostgresSQLXReplicaConfig creates a configured *sqlx.DB for the replica node of a replicated database.
func PostgresSQLXReplicaConfig() *sqlx.DB {
	db, err := PostgresSQLXConfig(PostgresReplicaDSN())
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	return db
}
