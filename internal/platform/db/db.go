// Package db opens the Postgres pool backing the trip log. The pgx stdlib
// driver is registered by the importing binary.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Open connects and verifies the connection. The pool is kept small: the
// trip log sees one write per finished session plus occasional listings.
func Open(databaseURL string) (*sql.DB, error) {
	pool, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	pool.SetMaxOpenConns(5)
	pool.SetMaxIdleConns(2)
	pool.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return pool, nil
}
