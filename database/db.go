package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	apperrors "corpus-prep/errors"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "ping: %v", err)
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dictionary_entries (
            kind TEXT NOT NULL,
            term TEXT NOT NULL,
            replacement TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ DEFAULT NOW(),
            PRIMARY KEY (kind, term)
        )`,
		`CREATE TABLE IF NOT EXISTS corpus_runs (
            id UUID PRIMARY KEY,
            stage TEXT NOT NULL,
            source_file TEXT NOT NULL,
            text_column TEXT NOT NULL,
            row_count INTEGER NOT NULL DEFAULT 0,
            acronyms TEXT[] DEFAULT '{}'::TEXT[],
            entities TEXT[] DEFAULT '{}'::TEXT[],
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_corpus_runs_created_at ON corpus_runs(created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
