// Package sqlstore keeps tickets in PostgreSQL (pgvector) or MySQL (JSON
// embeddings scanned in process).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dupfinder/internal/database"
	"dupfinder/internal/models"
	"dupfinder/internal/similarity"
	"dupfinder/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
)

// Store is a SQL-backed append-only ticket store
type Store struct {
	db         *sqlx.DB
	writer     *database.WriteClient
	dialect    string
	dimensions int
	logger     zerolog.Logger
}

// Open connects to databaseURL and makes sure the tickets table exists
func Open(ctx context.Context, databaseURL string, dimensions int, logger zerolog.Logger) (*Store, error) {
	db, err := database.New(databaseURL)
	if err != nil {
		return nil, err
	}

	s := New(db, dimensions, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection. The dialect follows the connection's driver.
func New(db *sqlx.DB, dimensions int, logger zerolog.Logger) *Store {
	dialect := database.DriverMySQL
	if db.DriverName() == database.DriverPostgres {
		dialect = database.DriverPostgres
	}
	return &Store{
		db:         db,
		writer:     database.NewWriteClientFromDB(db),
		dialect:    dialect,
		dimensions: dimensions,
		logger:     logger.With().Str("component", "sql_store").Str("dialect", dialect).Logger(),
	}
}

// EnsureSchema creates the tickets table when missing and fails when an
// existing table holds vectors of a different length
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.dialect == database.DriverPostgres {
		return s.ensurePostgresSchema(ctx)
	}
	return s.ensureMySQLSchema(ctx)
}

func (s *Store) ensurePostgresSchema(ctx context.Context) error {
	err := s.writer.ExecuteInTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
			return fmt.Errorf("failed to enable pgvector: %w", err)
		}
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS tickets (
				id BIGINT PRIMARY KEY,
				title TEXT NOT NULL,
				clean_question_body TEXT NOT NULL,
				clean_answer_body TEXT,
				summary TEXT NOT NULL,
				embedding vector(%d) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, s.dimensions)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create tickets table: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// pgvector stores the declared dimension as the column's type modifier
	var declared int
	err = database.ExecuteReadOnlyQuerySingle(ctx, s.db, &declared,
		`SELECT atttypmod FROM pg_attribute WHERE attrelid = 'tickets'::regclass AND attname = 'embedding'`)
	if err != nil {
		return fmt.Errorf("failed to read embedding column type: %w", err)
	}
	if declared != s.dimensions {
		return fmt.Errorf("%w: tickets.embedding is vector(%d), configured %d", store.ErrDimensionMismatch, declared, s.dimensions)
	}

	s.logger.Info().Int("dimensions", s.dimensions).Msg("Tickets table ready")
	return nil
}

func (s *Store) ensureMySQLSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tickets (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			clean_question_body MEDIUMTEXT NOT NULL,
			clean_answer_body MEDIUMTEXT NULL,
			summary TEXT NOT NULL,
			embedding JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := s.writer.ExecuteWriteQuery(ctx, query); err != nil {
		return fmt.Errorf("failed to create tickets table: %w", err)
	}

	// MySQL has no vector type, so check an existing row instead
	var stored int
	err := database.ExecuteReadOnlyQuerySingle(ctx, s.db, &stored, `SELECT JSON_LENGTH(embedding) FROM tickets LIMIT 1`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to inspect stored embeddings: %w", err)
	case stored != s.dimensions:
		return fmt.Errorf("%w: stored embeddings have %d dimensions, configured %d", store.ErrDimensionMismatch, stored, s.dimensions)
	}

	s.logger.Info().Int("dimensions", s.dimensions).Msg("Tickets table ready")
	return nil
}

// Append inserts a ticket. An existing id yields store.ErrDuplicateTicket.
func (s *Store) Append(ctx context.Context, ticket models.Ticket) error {
	if err := store.CheckDimensions(ticket.Embedding, s.dimensions); err != nil {
		return err
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	var embedding interface{}
	if s.dialect == database.DriverPostgres {
		embedding = pgvector.NewVector(ticket.Embedding)
	} else {
		embeddingJSON, err := json.Marshal(ticket.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		embedding = string(embeddingJSON)
	}

	query := `
		INSERT INTO tickets (id, title, clean_question_body, clean_answer_body, summary, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.writer.ExecuteWriteQuery(ctx, query,
		ticket.ID, ticket.Title, ticket.CleanBody, ticket.AcceptedAnswerBody, ticket.Summary, embedding, ticket.CreatedAt)
	if err != nil {
		if store.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %d", store.ErrDuplicateTicket, ticket.ID)
		}
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	s.logger.Debug().Int64("ticket_id", ticket.ID).Msg("Ticket stored")
	return nil
}

// Search returns the k tickets closest to vector, nearest first
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	if err := store.CheckDimensions(vector, s.dimensions); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []models.SearchResult{}, nil
	}
	if s.dialect == database.DriverPostgres {
		return s.searchPostgres(ctx, vector, k)
	}
	return s.searchMySQL(ctx, vector, k)
}

func (s *Store) searchPostgres(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	// Exact scan; no ANN index is created on the embedding column.
	// Zero vectors give NaN in pgvector and must rank as unrelated before
	// LIMIT cuts the list, so the mapping happens in SQL.
	query := s.db.Rebind(`
		SELECT id, title, clean_question_body, clean_answer_body,
			COALESCE(NULLIF(embedding <=> ?, 'NaN'::float8), 1) AS distance
		FROM tickets
		ORDER BY distance, id
		LIMIT ?
	`)

	results := []models.SearchResult{}
	if err := database.ExecuteReadOnlyQuery(ctx, s.db, &results, query, pgvector.NewVector(vector), k); err != nil {
		return nil, err
	}

	for i := range results {
		d := results[i].Distance
		switch {
		case d < 0:
			results[i].Distance = 0
		case d > 2:
			results[i].Distance = 2
		}
	}
	similarity.SortResults(results)
	return results, nil
}

type mysqlRow struct {
	ID                 int64     `db:"id"`
	Title              string    `db:"title"`
	CleanBody          string    `db:"clean_question_body"`
	AcceptedAnswerBody *string   `db:"clean_answer_body"`
	Summary            string    `db:"summary"`
	Embedding          string    `db:"embedding"`
	CreatedAt          time.Time `db:"created_at"`
}

func (s *Store) searchMySQL(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	var rows []mysqlRow
	query := `
		SELECT id, title, clean_question_body, clean_answer_body, summary, embedding, created_at
		FROM tickets
	`
	if err := database.ExecuteReadOnlyQuery(ctx, s.db, &rows, query); err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(rows))
	for _, row := range rows {
		var embedding []float32
		if err := json.Unmarshal([]byte(row.Embedding), &embedding); err != nil {
			s.logger.Warn().Err(err).Int64("ticket_id", row.ID).Msg("Skipping ticket with invalid embedding")
			continue
		}
		tickets = append(tickets, models.Ticket{
			ID:                 row.ID,
			Title:              row.Title,
			CleanBody:          row.CleanBody,
			AcceptedAnswerBody: row.AcceptedAnswerBody,
			Summary:            row.Summary,
			Embedding:          embedding,
			CreatedAt:          row.CreatedAt,
		})
	}

	return similarity.TopK(vector, tickets, k), nil
}

// Count returns the number of stored tickets
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := database.ExecuteReadOnlyQuerySingle(ctx, s.db, &count, `SELECT COUNT(*) FROM tickets`); err != nil {
		return 0, err
	}
	return count, nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return database.ExecuteReadOnlyPing(ctx, s.db)
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
