package config

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLDBConfig creates a configured *sql.DB for the given DSN with the
// engine's default pool settings. The connection is verified with a ping.
func PostgresSQLDBConfig(dsn string) (*sql.DB, error) {
	const defaultMaxOpenConnections = 50
	const defaultMaxIdleConnections = 2
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db, err := sql.Open("postgres", dsn)
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

// PostgresSQLDBSingleConfig creates a configured *sql.DB for a single database.
func PostgresSQLDBSingleConfig() *sql.DB {
	db, err := PostgresSQLDBConfig(PostgresSingleDSN())
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	return db
}

// PostgresSQLDBPrimaryConfig creates a configured *sql.DB for the primary node of a replicated database.
func PostgresSQLDBPrimaryConfig() *sql.DB {
	db, err := PostgresSQLDBConfig(PostgresPrimaryDSN())
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	return db
}

// PostgresSQLDBReplicaConfig creates a configured *sql.DB for the replica node of a replicated database.
func PostgresSQLDBReplicaConfig() *sql.DB {
	db, err := PostgresSQLDBConfig(PostgresReplicaDSN())
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	return db
}
