package detect

import (
	"context"
	"fmt"
	"strings"
)

// DetectCompoundEntities runs rec once over text and keeps the distinct spans
// made of two or more whitespace-separated words. Single-word entities are
// dropped. Blank text still goes to rec and yields an empty set when rec
// finds nothing. Recognizer failures are returned as-is (wrapped), never
// retried.
func DetectCompoundEntities(ctx context.Context, text string, rec EntityRecognizer) (Set, error) {
	entities := make(Set)
	spans, err := rec.Recognize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("recognize entities: %w", err)
	}

	for _, span := range spans {
		if IsCompound(span.Text) {
			entities.Add(span.Text)
		}
	}
	return entities, nil
}

// IsCompound reports whether s has at least two whitespace-separated words.
func IsCompound(s string) bool {
	return len(strings.Fields(s)) >= 2
}
