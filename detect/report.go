package detect

import (
	"context"
	"fmt"
)

// Report aggregates both detectors over a column of texts.
type Report struct {
	Rows     int
	Acronyms []string
	Entities []string
	// RowHits counts, per term, how many rows mention it.
	RowHits map[string]int
}

// Scan runs both detectors over every text sequentially. The result lists are
// sorted so the report reads the same on every run.
func Scan(ctx context.Context, texts []string, rec EntityRecognizer) (*Report, error) {
	acronyms := make(Set)
	entities := make(Set)
	hits := make(map[string]int)

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, a := range DetectAcronyms(text) {
			acronyms.Add(a)
			hits[a]++
		}

		found, err := DetectCompoundEntities(ctx, text, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for e := range found {
			entities.Add(e)
			hits[e]++
		}
	}

	return &Report{
		Rows:     len(texts),
		Acronyms: acronyms.Sorted(),
		Entities: entities.Sorted(),
		RowHits:  hits,
	}, nil
}
