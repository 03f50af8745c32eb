// Package pipeline ties detection, dictionaries and corpus generation
// together for the CLI and the HTTP server.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"corpus-prep/config"
	"corpus-prep/corpus"
	"corpus-prep/database"
	"corpus-prep/detect"
	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
	"corpus-prep/metrics"
	"corpus-prep/sheet"
)

// Store persists dictionaries and run history. PostgresStore implements it.
type Store interface {
	LoadDictionary(ctx context.Context, kind dictionary.Kind) (*dictionary.Dictionary, error)
	UpsertEntries(ctx context.Context, d *dictionary.Dictionary, replace bool) error
	DeleteEntry(ctx context.Context, kind dictionary.Kind, term string) error
	RecordRun(ctx context.Context, run *database.Run) error
	RecentRuns(ctx context.Context, limit int) ([]database.Run, error)
}

// Template sheet layout; dictionary.Parse picks these sheets back up by name.
const (
	AcronymSheet = "siglas"
	EntitySheet  = "entidades"
)

var templateHeaders = []string{"termo", "substituto", "linhas"}

type Pipeline struct {
	cfg        *config.Config
	recognizer detect.EntityRecognizer
	store      Store
	metrics    *metrics.Metrics
	logger     *zap.Logger

	// dictionaries named in the configuration, loaded once
	acronyms *dictionary.Dictionary
	entities *dictionary.Dictionary
}

// New loads the configured dictionary files. store and m may be nil.
func New(cfg *config.Config, rec detect.EntityRecognizer, store Store, m *metrics.Metrics, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		cfg:        cfg,
		recognizer: rec,
		store:      store,
		metrics:    m,
		logger:     logger,
		acronyms:   dictionary.New(dictionary.KindAcronym),
		entities:   dictionary.New(dictionary.KindEntity),
	}

	if cfg.AcronymDictionary != "" {
		d, err := dictionary.LoadFile(cfg.AcronymDictionary, dictionary.KindAcronym)
		if err != nil {
			return nil, err
		}
		p.acronyms = d
		logger.Info("Loaded acronym dictionary", zap.String("path", cfg.AcronymDictionary), zap.Int("entries", d.Len()))
	}
	if cfg.EntityDictionary != "" {
		d, err := dictionary.LoadFile(cfg.EntityDictionary, dictionary.KindEntity)
		if err != nil {
			return nil, err
		}
		p.entities = d
		logger.Info("Loaded entity dictionary", zap.String("path", cfg.EntityDictionary), zap.Int("entries", d.Len()))
	}
	return p, nil
}

// HasStore reports whether dictionaries and runs are persisted.
func (p *Pipeline) HasStore() bool {
	return p.store != nil
}

// Detect scans one column of table for acronyms and compound entities.
func (p *Pipeline) Detect(ctx context.Context, table *sheet.Table, column string) (*detect.Report, error) {
	if column == "" {
		column = p.cfg.TextColumn
	}
	start := time.Now()

	texts, err := table.Column(column)
	if err != nil {
		p.metrics.Failure(metrics.StageDetect)
		return nil, err
	}

	report, err := detect.Scan(ctx, texts, p.recognizer)
	if err != nil {
		p.metrics.Failure(metrics.StageDetect)
		return nil, fmt.Errorf("detect %s: %w", table.Name, err)
	}
	elapsed := time.Since(start)

	p.metrics.ObserveDetect(report.Rows, len(report.Acronyms), len(report.Entities), elapsed)
	p.logger.Info("Detection finished",
		zap.String("source", table.Name),
		zap.String("column", column),
		zap.Int("rows", report.Rows),
		zap.Int("acronyms", len(report.Acronyms)),
		zap.Int("entities", len(report.Entities)),
		zap.Duration("duration", elapsed))

	p.record(ctx, &database.Run{
		Stage:      metrics.StageDetect,
		SourceFile: table.Name,
		TextColumn: column,
		RowCount:   report.Rows,
		Acronyms:   report.Acronyms,
		Entities:   report.Entities,
	})
	return report, nil
}

// WriteTemplate writes report as an editable dictionary workbook: one sheet
// per kind, replacement left blank for the analyst to fill in.
func WriteTemplate(w io.Writer, report *detect.Report) error {
	return sheet.WriteWorkbook(w, []sheet.Sheet{
		{Name: AcronymSheet, Headers: templateHeaders, Rows: templateRows(report.Acronyms, report.RowHits)},
		{Name: EntitySheet, Headers: templateHeaders, Rows: templateRows(report.Entities, report.RowHits)},
	})
}

func templateRows(terms []string, hits map[string]int) [][]interface{} {
	rows := make([][]interface{}, 0, len(terms))
	for _, term := range terms {
		rows = append(rows, []interface{}{term, "", hits[term]})
	}
	return rows
}

// GenerateRequest describes one corpus build. Empty fields fall back to the
// configuration; nil dictionaries fall back to the configured and stored ones.
type GenerateRequest struct {
	TextColumn      string
	MetadataColumns []string
	Acronyms        *dictionary.Dictionary
	Entities        *dictionary.Dictionary
}

// Generate builds the corpus for table.
func (p *Pipeline) Generate(ctx context.Context, table *sheet.Table, req GenerateRequest) (*corpus.Result, error) {
	layout := corpus.Layout{
		TextColumn:      req.TextColumn,
		MetadataColumns: req.MetadataColumns,
		RowIDVariable:   p.cfg.RowIDVariable,
		MissingValue:    p.cfg.MissingValue,
	}
	if layout.TextColumn == "" {
		layout.TextColumn = p.cfg.TextColumn
	}
	if layout.MetadataColumns == nil {
		layout.MetadataColumns = p.cfg.MetadataColumns
	}

	acronyms, err := p.Dictionary(ctx, dictionary.KindAcronym, req.Acronyms)
	if err != nil {
		p.metrics.Failure(metrics.StageGenerate)
		return nil, err
	}
	entities, err := p.Dictionary(ctx, dictionary.KindEntity, req.Entities)
	if err != nil {
		p.metrics.Failure(metrics.StageGenerate)
		return nil, err
	}

	normalizer := corpus.NewNormalizer(corpus.Options{
		Joiner:         p.cfg.WordJoiner,
		ConvertNumbers: p.cfg.ConvertNumbers,
		Contractions:   corpus.ContractionMode(p.cfg.ContractionMode),
		Lowercase:      p.cfg.Lowercase,
	}, acronyms, entities)

	result, err := corpus.NewGenerator(normalizer, p.cfg.Workers, p.logger).Generate(ctx, table, layout)
	if err != nil {
		p.metrics.Failure(metrics.StageGenerate)
		return nil, fmt.Errorf("generate %s: %w", table.Name, err)
	}

	p.metrics.ObserveGenerate(result.RowsRead, result.Substitutions.Acronyms, result.Substitutions.Entities, result.Duration)
	p.record(ctx, &database.Run{
		Stage:      metrics.StageGenerate,
		SourceFile: table.Name,
		TextColumn: layout.TextColumn,
		RowCount:   result.RowsWritten,
		Acronyms:   termsOf(acronyms),
		Entities:   termsOf(entities),
	})
	return result, nil
}

// Dictionary returns the effective dictionary of kind: stored entries, then
// configured file entries, then upload, each overriding the previous.
func (p *Pipeline) Dictionary(ctx context.Context, kind dictionary.Kind, upload *dictionary.Dictionary) (*dictionary.Dictionary, error) {
	out := dictionary.New(kind)
	if p.store != nil {
		stored, err := p.store.LoadDictionary(ctx, kind)
		if err != nil {
			return nil, err
		}
		out.Merge(stored)
	}
	if kind == dictionary.KindAcronym {
		out.Merge(p.acronyms)
	} else {
		out.Merge(p.entities)
	}
	out.Merge(upload)
	return out, nil
}

// StoredDictionary reads the persisted dictionary of kind.
func (p *Pipeline) StoredDictionary(ctx context.Context, kind dictionary.Kind) (*dictionary.Dictionary, error) {
	if p.store == nil {
		return nil, apperrors.WrapError(apperrors.ErrServiceUnavailable, "no dictionary store configured")
	}
	return p.store.LoadDictionary(ctx, kind)
}

// SaveDictionary persists d, replacing the stored kind entirely when replace is set.
func (p *Pipeline) SaveDictionary(ctx context.Context, d *dictionary.Dictionary, replace bool) error {
	if p.store == nil {
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, "no dictionary store configured")
	}
	return p.store.UpsertEntries(ctx, d, replace)
}

// DeleteTerm removes one stored term.
func (p *Pipeline) DeleteTerm(ctx context.Context, kind dictionary.Kind, term string) error {
	if p.store == nil {
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, "no dictionary store configured")
	}
	if strings.TrimSpace(term) == "" {
		return apperrors.WrapError(apperrors.ErrInvalidInput, "empty term")
	}
	return p.store.DeleteEntry(ctx, kind, term)
}

// Runs lists the latest recorded runs.
func (p *Pipeline) Runs(ctx context.Context, limit int) ([]database.Run, error) {
	if p.store == nil {
		return nil, apperrors.WrapError(apperrors.ErrServiceUnavailable, "no run store configured")
	}
	return p.store.RecentRuns(ctx, limit)
}

// record stores run history; failures are logged, never returned.
func (p *Pipeline) record(ctx context.Context, run *database.Run) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordRun(ctx, run); err != nil {
		p.logger.Warn("Failed to record run", zap.String("stage", run.Stage), zap.Error(err))
	}
}

func termsOf(d *dictionary.Dictionary) []string {
	entries := d.Entries()
	terms := make([]string, len(entries))
	for i, e := range entries {
		terms[i] = e.Term
	}
	return terms
}
