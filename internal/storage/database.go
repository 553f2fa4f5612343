// Package storage persists story sessions and the API key failure ledger.
// Sessions live in PostgreSQL when a database URL is configured and in a
// JSON file otherwise.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DatabasePool manages a shared database connection pool for all storage components
type DatabasePool struct {
	db    *sql.DB
	url   string
	mutex sync.Mutex
}

var globalPool = &DatabasePool{}

// GetDatabase returns a shared database connection, creating it if necessary
func GetDatabase(ctx context.Context, dbURL string) (*sql.DB, error) {
	globalPool.mutex.Lock()
	defer globalPool.mutex.Unlock()

	if globalPool.db != nil {
		if globalPool.url != dbURL {
			return nil, fmt.Errorf("database already opened with a different URL")
		}
		return globalPool.db, nil
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connectivity once with a timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	globalPool.db = db
	globalPool.url = dbURL
	return db, nil
}

// CloseDatabase closes the shared database connection
func CloseDatabase() error {
	globalPool.mutex.Lock()
	defer globalPool.mutex.Unlock()
	if globalPool.db == nil {
		return nil
	}
	err := globalPool.db.Close()
	globalPool.db = nil
	globalPool.url = ""
	return err
}

// InitializeAllTables creates all required tables in a single transaction
func InitializeAllTables(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{
		`CREATE TABLE IF NOT EXISTS story_sessions (
			id TEXT PRIMARY KEY,
			book_title TEXT NOT NULL,
			data JSONB NOT NULL,
			last_modified BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS key_failures (
			id BIGSERIAL PRIMARY KEY,
			provider TEXT NOT NULL,
			masked_key TEXT NOT NULL,
			http_status INTEGER NOT NULL,
			message TEXT NOT NULL,
			failed_at BIGINT NOT NULL
		)`,
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table); err != nil {
			return err
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_story_sessions_last_modified ON story_sessions(last_modified DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_key_failures_provider ON key_failures(provider, masked_key)`,
	}

	for _, index := range indexes {
		if _, err := tx.ExecContext(ctx, index); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DropAllTables drops all tables from the database
func DropAllTables(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"key_failures", "story_sessions"} {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}

	return tx.Commit()
}
