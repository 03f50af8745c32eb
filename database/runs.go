package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "corpus-prep/errors"
)

// Run is one recorded detection or generation.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Stage      string    `json:"stage"`
	SourceFile string    `json:"source_file"`
	TextColumn string    `json:"text_column"`
	RowCount   int       `json:"row_count"`
	Acronyms   []string  `json:"acronyms"`
	Entities   []string  `json:"entities"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordRun inserts run, assigning an id and timestamp when missing.
func (s *PostgresStore) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO corpus_runs (id, stage, source_file, text_column, row_count, acronyms, entities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.DB.ExecContext(ctx, query, run.ID, run.Stage, run.SourceFile, run.TextColumn, run.RowCount,
		pq.Array(nonNil(run.Acronyms)), pq.Array(nonNil(run.Entities)), run.CreatedAt)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "record run: %v", err)
	}
	return nil
}

// RecentRuns lists the latest runs, newest first.
func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, stage, source_file, text_column, row_count, acronyms, entities, created_at
		FROM corpus_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "list runs: %v", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var acronyms, entities pq.StringArray
		if err := rows.Scan(&run.ID, &run.Stage, &run.SourceFile, &run.TextColumn, &run.RowCount, &acronyms, &entities, &run.CreatedAt); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "scan run: %v", err)
		}
		run.Acronyms = []string(acronyms)
		run.Entities = []string(entities)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRunsBefore removes runs created before cutoff and reports how many went.
func (s *PostgresStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM corpus_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "delete runs: %v", err)
	}
	return res.RowsAffected()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
