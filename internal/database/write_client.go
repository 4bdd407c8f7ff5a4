package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// WriteClient provides write access to the ticket tables
type WriteClient struct {
	db *sqlx.DB
}

// NewWriteClient opens a write-enabled connection (supports both MySQL and PostgreSQL)
func NewWriteClient(databaseURL string) (*WriteClient, error) {
	db, err := New(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with write access: %w", err)
	}
	return &WriteClient{db: db}, nil
}

// NewWriteClientFromDB wraps an existing connection pool
func NewWriteClientFromDB(db *sqlx.DB) *WriteClient {
	return &WriteClient{db: db}
}

// GetDB returns the underlying database connection
func (wc *WriteClient) GetDB() *sqlx.DB {
	return wc.db
}

// ExecuteWriteQuery executes a write query. Placeholders are written as ?
// and rebound for the connection's driver.
func (wc *WriteClient) ExecuteWriteQuery(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return wc.db.ExecContext(ctx, wc.db.Rebind(query), args...)
}

// ExecuteInTx runs fn inside a transaction, committing only when fn succeeds
func (wc *WriteClient) ExecuteInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := wc.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (wc *WriteClient) Close() error {
	return wc.db.Close()
}
