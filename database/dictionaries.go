package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
)

// UpsertEntries stores entries under kind, replacing any previous replacement
// for the same term. With replace set, entries of kind not in the list are
// removed first.
func (s *PostgresStore) UpsertEntries(ctx context.Context, d *dictionary.Dictionary, replace bool) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "begin: %v", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dictionary_entries WHERE kind = $1`, string(d.Kind)); err != nil {
			return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "clear %s entries: %v", d.Kind, err)
		}
	}

	query := `
		INSERT INTO dictionary_entries (kind, term, replacement, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, term) DO UPDATE
		SET replacement = EXCLUDED.replacement, updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	for _, e := range d.Entries() {
		if _, err := tx.ExecContext(ctx, query, string(d.Kind), e.Term, e.Replacement, now); err != nil {
			return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "upsert %q: %v", e.Term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "commit: %v", err)
	}
	s.logger.Info("Stored dictionary entries",
		zap.String("kind", string(d.Kind)),
		zap.Int("entries", d.Len()),
		zap.Bool("replace", replace))
	return nil
}

// LoadDictionary reads every stored entry of kind. An empty table yields an
// empty dictionary.
func (s *PostgresStore) LoadDictionary(ctx context.Context, kind dictionary.Kind) (*dictionary.Dictionary, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT term, replacement FROM dictionary_entries WHERE kind = $1 ORDER BY term`, string(kind))
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "load %s entries: %v", kind, err)
	}
	defer rows.Close()

	d := dictionary.New(kind)
	for rows.Next() {
		var term, replacement string
		if err := rows.Scan(&term, &replacement); err != nil {
			return nil, fmt.Errorf("scan dictionary entry: %w", err)
		}
		d.Set(term, replacement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dictionary entries: %w", err)
	}
	return d, nil
}

// DeleteEntry removes one term. Deleting a missing term reports ErrNotFound.
func (s *PostgresStore) DeleteEntry(ctx context.Context, kind dictionary.Kind, term string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM dictionary_entries WHERE kind = $1 AND term = $2`, string(kind), term)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "delete %q: %v", term, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "delete %q: %v", term, err)
	}
	if n == 0 {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "%s %q", kind, term)
	}
	return nil
}
