package corpus

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"corpus-prep/sheet"
)

// Layout names the table columns that feed the corpus.
type Layout struct {
	TextColumn      string
	MetadataColumns []string
	RowIDVariable   string // empty disables the row id tag
	MissingValue    string
}

// Text is one emitted corpus entry.
type Text struct {
	Row  int // 1-based data row in the source table
	Tags []Tag
	Body string
}

// Result is the outcome of a generation run.
type Result struct {
	Texts         []Text
	RowsRead      int
	RowsWritten   int
	RowsSkipped   int
	Substitutions Counts
	Duration      time.Duration
}

// WriteTo writes the corpus: a metadata line, the text, and a blank line
// between texts.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, t := range r.Texts {
		entry := MetadataLine(t.Tags) + "\n" + t.Body + "\n"
		if i > 0 {
			entry = "\n" + entry
		}
		n, err := io.WriteString(w, entry)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String renders the whole corpus.
func (r *Result) String() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return b.String()
}

// Generator turns table rows into corpus texts over a bounded worker pool.
type Generator struct {
	normalizer *Normalizer
	workers    int
	logger     *zap.Logger
}

func NewGenerator(normalizer *Normalizer, workers int, logger *zap.Logger) *Generator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{normalizer: normalizer, workers: workers, logger: logger}
}

type column struct {
	variable string
	index    int
}

// Generate normalizes the text column of every row and tags it with the
// layout's metadata. Output order follows input order. Rows left empty after
// normalization are skipped.
func (g *Generator) Generate(ctx context.Context, table *sheet.Table, layout Layout) (*Result, error) {
	start := time.Now()

	textIdx, err := table.ColumnIndex(layout.TextColumn)
	if err != nil {
		return nil, err
	}

	columns := make([]column, 0, len(layout.MetadataColumns))
	for _, name := range layout.MetadataColumns {
		idx, err := table.ColumnIndex(name)
		if err != nil {
			return nil, fmt.Errorf("metadata column: %w", err)
		}
		columns = append(columns, column{variable: VariableName(table.Headers[idx]), index: idx})
	}

	missing := layout.MissingValue
	if missing == "" {
		missing = "na"
	}

	texts := make([]*Text, len(table.Rows))
	counts := make([]Counts, len(table.Rows))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, row := range table.Rows {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			body, c := g.normalizer.Normalize(row[textIdx])
			counts[i] = c
			if body == "" {
				return nil
			}

			tags := make([]Tag, 0, len(columns)+1)
			if layout.RowIDVariable != "" {
				tags = append(tags, Tag{Variable: VariableName(layout.RowIDVariable), Value: RowID(i+1, len(table.Rows))})
			}
			for _, col := range columns {
				tags = append(tags, Tag{Variable: col.variable, Value: ModalityValue(row[col.index], missing)})
			}
			texts[i] = &Text{Row: i + 1, Tags: tags, Body: body}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &Result{RowsRead: len(table.Rows)}
	for i, t := range texts {
		result.Substitutions.Add(counts[i])
		if t == nil {
			result.RowsSkipped++
			continue
		}
		result.Texts = append(result.Texts, *t)
	}
	result.RowsWritten = len(result.Texts)
	result.Duration = time.Since(start)

	g.logger.Info("Corpus generated",
		zap.String("source", table.Name),
		zap.Int("rows_read", result.RowsRead),
		zap.Int("rows_written", result.RowsWritten),
		zap.Int("rows_skipped", result.RowsSkipped),
		zap.Int("acronym_substitutions", result.Substitutions.Acronyms),
		zap.Int("entity_substitutions", result.Substitutions.Entities),
		zap.Duration("duration", result.Duration))

	return result, nil
}
