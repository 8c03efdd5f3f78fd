package database

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "techsupport-agent/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(connStr string, logger *zap.Logger) (*PostgresStore, error) {
	if connStr == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "database url is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.Join(apperrors.ErrDatabaseOperation, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.Join(apperrors.ErrServiceUnavailable, err)
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kb_categories (
            id SERIAL PRIMARY KEY,
            label TEXT NOT NULL,
            position INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS kb_entries (
            id SERIAL PRIMARY KEY,
            category_id INTEGER NOT NULL REFERENCES kb_categories(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            question TEXT NOT NULL,
            answer TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_kb_entries_category ON kb_entries(category_id, position)`,
		`CREATE TABLE IF NOT EXISTS question_history (
            id UUID PRIMARY KEY,
            question TEXT NOT NULL,
            answer_types TEXT[] NOT NULL DEFAULT '{}'::TEXT[],
            top_category TEXT NOT NULL DEFAULT '',
            emergency BOOLEAN NOT NULL DEFAULT FALSE,
            symptoms TEXT[] NOT NULL DEFAULT '{}'::TEXT[],
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_question_history_created_at ON question_history(created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return apperrors.Join(apperrors.ErrDatabaseOperation, fmt.Errorf("failed to execute schema statement: %w", err))
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
