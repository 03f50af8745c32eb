package detect

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// CachedRecognizer memoizes another recognizer's spans by input text.
// Survey answers repeat a lot ("não sei", "nenhum"), so the hit rate is high.
type CachedRecognizer struct {
	next  EntityRecognizer
	cache *lru.Cache
}

// NewCachedRecognizer wraps next with an LRU of the given size.
func NewCachedRecognizer(next EntityRecognizer, size int) (*CachedRecognizer, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create recognizer cache: %w", err)
	}
	return &CachedRecognizer{next: next, cache: cache}, nil
}

func (c *CachedRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	if cached, ok := c.cache.Get(text); ok {
		return cloneSpans(cached.([]Span)), nil
	}

	spans, err := c.next.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, cloneSpans(spans))
	return spans, nil
}

// Len returns the number of cached texts.
func (c *CachedRecognizer) Len() int {
	return c.cache.Len()
}

func cloneSpans(spans []Span) []Span {
	out := make([]Span, len(spans))
	copy(out, spans)
	return out
}
